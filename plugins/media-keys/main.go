// Command media-keys is the bundled mudra plugin. It reads one request from
// stdin, presses the matching media key and writes a response to stdout.
//
// macOS uses System Events key codes through osascript. Linux uses playerctl
// for playback and amixer for the master volume.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Step int `json:"step"`
}

const defaultStep = 5

// keySender presses one media key for an action.
type keySender func(action string, cfg config) error

var senders = map[string]keySender{
	"darwin": sendDarwin,
	"linux":  sendLinux,
}

var actions = map[string]bool{
	"play-pause":     true,
	"track-previous": true,
	"track-next":     true,
	"volume-up":      true,
	"volume-down":    true,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}
	writeResponse(handle(req, runtime.GOOS))
}

func handle(req Request, goos string) error {
	if !actions[req.Action] {
		return fmt.Errorf("unknown action: %s", req.Action)
	}

	send, ok := senders[goos]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	cfg := config{Step: defaultStep}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Step <= 0 {
		cfg.Step = defaultStep
	}

	if err := send(req.Action, cfg); err != nil {
		return fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, output)
	}
	return nil
}

// darwinKeyCodes are the System Events codes of the F7/F8/F9 media keys.
var darwinKeyCodes = map[string]int{
	"track-previous": 98,
	"play-pause":     100,
	"track-next":     101,
}

func sendDarwin(action string, cfg config) error {
	switch action {
	case "volume-up":
		return run("osascript", "-e", fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + %d)`, cfg.Step))
	case "volume-down":
		return run("osascript", "-e", fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) - %d)`, cfg.Step))
	}
	return run("osascript", "-e", fmt.Sprintf(`tell application "System Events" to key code %d`, darwinKeyCodes[action]))
}

func sendLinux(action string, cfg config) error {
	step := strconv.Itoa(cfg.Step) + "%"
	switch action {
	case "play-pause":
		return run("playerctl", "play-pause")
	case "track-previous":
		return run("playerctl", "previous")
	case "track-next":
		return run("playerctl", "next")
	case "volume-up":
		return run("amixer", "-q", "sset", "Master", step+"+")
	default:
		return run("amixer", "-q", "sset", "Master", step+"-")
	}
}
