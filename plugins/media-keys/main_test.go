package main

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestHandle(t *testing.T) {
	var gotAction string
	var gotStep int
	senders["test"] = func(action string, cfg config) error {
		gotAction, gotStep = action, cfg.Step
		return nil
	}
	senders["broken"] = func(string, config) error { return errors.New("no player running") }
	t.Cleanup(func() {
		delete(senders, "test")
		delete(senders, "broken")
	})

	tests := []struct {
		name     string
		req      Request
		goos     string
		wantErr  bool
		wantStep int
	}{
		{"default step", Request{Action: "volume-up"}, "test", false, defaultStep},
		{"configured step", Request{Action: "volume-down", Config: json.RawMessage(`{"step":10}`)}, "test", false, 10},
		{"zero step falls back", Request{Action: "volume-down", Config: json.RawMessage(`{"step":0}`)}, "test", false, defaultStep},
		{"unknown action", Request{Action: "brightness-up"}, "test", true, 0},
		{"bad config", Request{Action: "play-pause", Config: json.RawMessage(`{"step":"x"}`)}, "test", true, 0},
		{"unsupported platform", Request{Action: "play-pause"}, "plan9", true, 0},
		{"sender failure", Request{Action: "track-next"}, "broken", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAction, gotStep = "", 0
			err := handle(tt.req, tt.goos)
			if (err != nil) != tt.wantErr {
				t.Fatalf("handle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if gotAction != tt.req.Action {
				t.Errorf("expected action %s, got %s", tt.req.Action, gotAction)
			}
			if gotStep != tt.wantStep {
				t.Errorf("expected step %d, got %d", tt.wantStep, gotStep)
			}
		})
	}
}

func TestDarwinKeyCodes(t *testing.T) {
	for action := range actions {
		if action == "volume-up" || action == "volume-down" {
			continue
		}
		if _, ok := darwinKeyCodes[action]; !ok {
			t.Errorf("no key code for %s", action)
		}
	}
}
