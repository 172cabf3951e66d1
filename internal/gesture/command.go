package gesture

import (
	"errors"
	"fmt"
)

// Command is a discrete media command emitted by the engine.
type Command string

// Media commands.
const (
	CommandNone          Command = ""
	CommandTrackPrevious Command = "track-previous"
	CommandTrackNext     Command = "track-next"
	CommandPlayPause     Command = "play-pause"
	CommandVolumeUp      Command = "volume-up"
	CommandVolumeDown    Command = "volume-down"
)

// ErrUnknownCommand is returned when parsing an unrecognized command token.
var ErrUnknownCommand = errors.New("unknown command")

// Commands lists every emitted command.
func Commands() []Command {
	return []Command{
		CommandTrackPrevious,
		CommandTrackNext,
		CommandPlayPause,
		CommandVolumeUp,
		CommandVolumeDown,
	}
}

// ParseCommand converts a token such as "play-pause" to a Command.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands() {
		if string(c) == s {
			return c, nil
		}
	}
	return CommandNone, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// String returns the command token, or "none".
func (c Command) String() string {
	if c == CommandNone {
		return "none"
	}
	return string(c)
}
