package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return nil, plugin.ErrPluginNotFound
}

func (f fakePlugins) List() []*plugin.Plugin {
	var out []*plugin.Plugin
	for _, name := range []string{"media-keys", "spotify"} {
		if p, ok := f[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

func testPlugins() fakePlugins {
	return fakePlugins{
		"media-keys": {Manifest: plugin.Manifest{Name: "media-keys", Actions: []string{"play-pause", "volume-up"}}},
		"spotify":    {Manifest: plugin.Manifest{Name: "spotify", Actions: []string{"toggle"}}},
	}
}

type fakeController struct {
	mu     sync.Mutex
	status app.Status
}

func (f *fakeController) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Enabled = enabled
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestBindingHandler_PutAndGet(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, testPlugins())

	rec := do(t, handler, http.MethodPut, "/api/bindings/play-pause", `{"plugin": "spotify", "action": "toggle", "config": {"device": "den"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var saved store.Binding
	decode(t, rec, &saved)
	if saved.ID == "" || saved.Command != "play-pause" || saved.PluginName != "spotify" || !saved.Enabled {
		t.Errorf("unexpected binding: %+v", saved)
	}

	rec = do(t, handler, http.MethodGet, "/api/bindings/play-pause", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got store.Binding
	decode(t, rec, &got)
	if got.ID != saved.ID || got.ActionName != "toggle" {
		t.Errorf("unexpected binding: %+v", got)
	}

	var config map[string]string
	if err := json.Unmarshal(got.Config, &config); err != nil || config["device"] != "den" {
		t.Errorf("expected config to round-trip, got %s", got.Config)
	}
}

func TestBindingHandler_PutDisabled(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	rec := do(t, handler, http.MethodPut, "/api/bindings/volume-up", `{"plugin": "anything", "action": "louder", "enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	b, err := s.Bindings().Get("volume-up")
	if err != nil || b == nil {
		t.Fatalf("Get() = %v, %v", b, err)
	}
	if b.Enabled {
		t.Error("expected binding to be stored disabled")
	}
}

func TestBindingHandler_PutValidation(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, testPlugins())

	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown command", "/api/bindings/wave", `{"plugin": "media-keys", "action": "play-pause"}`},
		{"invalid json", "/api/bindings/play-pause", `{`},
		{"missing plugin", "/api/bindings/play-pause", `{"action": "play-pause"}`},
		{"missing action", "/api/bindings/play-pause", `{"plugin": "media-keys"}`},
		{"unknown plugin", "/api/bindings/play-pause", `{"plugin": "winamp", "action": "play"}`},
		{"unsupported action", "/api/bindings/play-pause", `{"plugin": "spotify", "action": "play-pause"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPut, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}

	bindings, _ := s.Bindings().List()
	if len(bindings) != 0 {
		t.Errorf("expected nothing stored, got %d bindings", len(bindings))
	}
}

func TestBindingHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	rec := do(t, handler, http.MethodGet, "/api/bindings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "{\"bindings\":[]}\n" {
		t.Errorf("expected empty list, got %q", body)
	}

	for _, cmd := range []string{"volume-up", "play-pause"} {
		if err := s.Bindings().Upsert(&store.Binding{Command: cmd, PluginName: "media-keys", ActionName: cmd, Enabled: true}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	rec = do(t, handler, http.MethodGet, "/api/bindings", "")
	var resp struct {
		Bindings []store.Binding `json:"bindings"`
	}
	decode(t, rec, &resp)
	if len(resp.Bindings) != 2 || resp.Bindings[0].Command != "play-pause" {
		t.Errorf("unexpected bindings: %+v", resp.Bindings)
	}
}

func TestBindingHandler_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(t, handler, method, "/api/bindings/track-next", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestBindingHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	if err := s.Bindings().Upsert(&store.Binding{Command: "track-next", PluginName: "media-keys", ActionName: "track-next", Enabled: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec := do(t, handler, http.MethodDelete, "/api/bindings/track-next", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if b, _ := s.Bindings().Get("track-next"); b != nil {
		t.Error("expected binding to be deleted")
	}
}

func TestBindingHandler_MethodNotAllowed(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/bindings"},
		{http.MethodDelete, "/api/bindings"},
		{http.MethodPost, "/api/bindings/play-pause"},
	}

	for _, tt := range tests {
		rec := do(t, handler, tt.method, tt.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func recordEvents(t *testing.T, s *store.Store, commands ...string) {
	t.Helper()
	for _, cmd := range commands {
		if err := s.Events().Record(&store.Event{Command: cmd, Category: "test", Delivered: true}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
}

func TestEventHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewEventHandler(s)
	recordEvents(t, s, "play-pause", "volume-up", "volume-up")

	rec := do(t, handler, http.MethodGet, "/api/events?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Events []store.Event `json:"events"`
	}
	decode(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].Command != "volume-up" {
		t.Errorf("expected newest first, got %s", resp.Events[0].Command)
	}
}

func TestEventHandler_BadLimit(t *testing.T) {
	handler := NewEventHandler(newTestStore(t))

	for _, limit := range []string{"abc", "-1"} {
		rec := do(t, handler, http.MethodGet, "/api/events?limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected status %d, got %d", limit, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestEventHandler_StatsAndClear(t *testing.T) {
	s := newTestStore(t)
	handler := NewEventHandler(s)
	recordEvents(t, s, "play-pause", "volume-up", "volume-up")

	rec := do(t, handler, http.MethodGet, "/api/events/stats", "")
	var stats struct {
		Counts map[string]int `json:"counts"`
		Total  int            `json:"total"`
	}
	decode(t, rec, &stats)
	if stats.Total != 3 || stats.Counts["volume-up"] != 2 || stats.Counts["play-pause"] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	rec = do(t, handler, http.MethodDelete, "/api/events", "")
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	decode(t, rec, &cleared)
	if cleared.Deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", cleared.Deleted)
	}

	events, _ := s.Events().List(0)
	if len(events) != 0 {
		t.Errorf("expected empty log, got %d events", len(events))
	}
}

func TestEventHandler_Routing(t *testing.T) {
	handler := NewEventHandler(newTestStore(t))

	if rec := do(t, handler, http.MethodPost, "/api/events", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := do(t, handler, http.MethodDelete, "/api/events/stats", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/events/latest", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	ctrl := &fakeController{status: app.Status{Enabled: true, Label: "Searching..."}}
	handler := NewStatusHandler(ctrl)

	rec := do(t, handler, http.MethodGet, "/api/status", "")
	var status app.Status
	decode(t, rec, &status)
	if !status.Enabled || status.Label != "Searching..." {
		t.Errorf("unexpected status: %+v", status)
	}

	rec = do(t, handler, http.MethodPut, "/api/status", `{"enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	decode(t, rec, &status)
	if status.Enabled {
		t.Error("expected detection to be disabled")
	}

	for _, body := range []string{`{}`, `nope`} {
		if rec := do(t, handler, http.MethodPut, "/api/status", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
		}
	}
	if rec := do(t, handler, http.MethodDelete, "/api/status", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestPluginHandler(t *testing.T) {
	handler := NewPluginHandler(testPlugins())

	rec := do(t, handler, http.MethodGet, "/api/plugins", "")
	var resp struct {
		Plugins []plugin.Manifest `json:"plugins"`
	}
	decode(t, rec, &resp)
	if len(resp.Plugins) != 2 || resp.Plugins[0].Name != "media-keys" {
		t.Errorf("unexpected plugins: %+v", resp.Plugins)
	}

	if rec := do(t, NewPluginHandler(fakePlugins{}), http.MethodGet, "/api/plugins", ""); rec.Body.String() != "{\"plugins\":[]}\n" {
		t.Errorf("expected empty list, got %q", rec.Body.String())
	}
}
