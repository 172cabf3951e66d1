package store

import (
	"encoding/json"
	"testing"
)

func TestBindingRepository_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	b := &Binding{
		Command:    "play-pause",
		PluginName: "media-keys",
		ActionName: "play-pause",
		Enabled:    true,
	}
	if err := repo.Upsert(b); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if b.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if string(b.Config) != "{}" {
		t.Errorf("expected default config {}, got %s", b.Config)
	}

	got, err := repo.Get("play-pause")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got == nil {
		t.Fatal("expected binding, got nil")
	}
	if got.ID != b.ID || got.PluginName != "media-keys" || !got.Enabled {
		t.Errorf("unexpected binding: %+v", got)
	}
}

func TestBindingRepository_UpsertReplacesKeepingID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	first := &Binding{Command: "volume-up", PluginName: "media-keys", ActionName: "volume-up", Enabled: true}
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	second := &Binding{
		Command:    "volume-up",
		PluginName: "custom",
		ActionName: "louder",
		Config:     json.RawMessage(`{"step":5}`),
		Enabled:    false,
	}
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("failed to upsert again: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected ID %s to be kept, got %s", first.ID, second.ID)
	}
	if second.PluginName != "custom" || second.ActionName != "louder" || second.Enabled {
		t.Errorf("expected replaced fields, got %+v", second)
	}
	if string(second.Config) != `{"step":5}` {
		t.Errorf("expected config to round trip, got %s", second.Config)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 binding, got %d", len(all))
	}
}

func TestBindingRepository_GetUnbound(t *testing.T) {
	s := newTestStore(t)

	b, err := s.Bindings().Get("track-next")
	if err != nil {
		t.Fatalf("expected no error for unbound command, got %v", err)
	}
	if b != nil {
		t.Errorf("expected nil binding, got %+v", b)
	}
}

func TestBindingRepository_ListOrdered(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	for _, c := range []string{"volume-up", "play-pause", "track-next"} {
		if err := repo.Upsert(&Binding{Command: c, PluginName: "p", ActionName: c, Enabled: true}); err != nil {
			t.Fatalf("failed to upsert %s: %v", c, err)
		}
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	want := []string{"play-pause", "track-next", "volume-up"}
	if len(all) != len(want) {
		t.Fatalf("expected %d bindings, got %d", len(want), len(all))
	}
	for i, b := range all {
		if b.Command != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], b.Command)
		}
	}
}

func TestBindingRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	repo.Upsert(&Binding{Command: "track-previous", PluginName: "p", ActionName: "a", Enabled: true})

	if err := repo.Delete("track-previous"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if b, _ := repo.Get("track-previous"); b != nil {
		t.Error("expected binding to be gone")
	}
	if err := repo.Delete("track-previous"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
