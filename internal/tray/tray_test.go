package tray

import (
	"context"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/app"
)

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("unexpected toggle callbacks: %v", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected tray to be enabled after two toggles")
	}
}

func TestTray_Settings(t *testing.T) {
	tr := New(true)
	tr.handleSettings()

	called := false
	tr.OnSettings(func() { called = true })
	tr.handleSettings()

	if !called {
		t.Error("expected settings callback")
	}
}

func TestTray_SetStatus(t *testing.T) {
	tr := New(true)

	tr.SetStatus(app.Status{Enabled: false, Label: "Play/Pause", LastCommand: "play-pause"})

	if tr.IsEnabled() {
		t.Error("expected tray to follow disabled status")
	}
	if tr.Label() != "Play/Pause" {
		t.Errorf("expected label Play/Pause, got %q", tr.Label())
	}
	if tr.LastCommand() != "play-pause" {
		t.Errorf("expected last command play-pause, got %q", tr.LastCommand())
	}
}

func TestTray_Watch(t *testing.T) {
	tr := New(true)
	updates := make(chan app.Status, 2)
	updates <- app.Status{Enabled: true, Label: "Hand", LastCommand: "volume-up"}
	close(updates)

	done := make(chan struct{})
	go func() {
		tr.Watch(context.Background(), updates)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after updates closed")
	}
	if tr.LastCommand() != "volume-up" {
		t.Errorf("expected last command volume-up, got %q", tr.LastCommand())
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{lastTitle(""), "Last: none"},
		{lastTitle("track-next"), "Last: track-next"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
