package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// PluginSource lists the plugins a binding may target.
type PluginSource interface {
	Get(name string) (*plugin.Plugin, error)
	List() []*plugin.Plugin
}

// BindingHandler handles HTTP requests for command bindings.
type BindingHandler struct {
	store   *store.Store
	plugins PluginSource
}

// NewBindingHandler creates a BindingHandler. When plugins is non-nil, new
// bindings must name a discovered plugin and one of its actions.
func NewBindingHandler(s *store.Store, plugins PluginSource) *BindingHandler {
	return &BindingHandler{store: s, plugins: plugins}
}

// ServeHTTP routes /api/bindings and /api/bindings/{command}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	cmd, err := gesture.ParseCommand(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown command")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, cmd)
	case http.MethodPut:
		h.put(w, r, cmd)
	case http.MethodDelete:
		h.delete(w, r, cmd)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type putBindingRequest struct {
	Plugin  string          `json:"plugin"`
	Action  string          `json:"action"`
	Config  json.RawMessage `json:"config"`
	Enabled *bool           `json:"enabled"`
}

type listBindingsResponse struct {
	Bindings []*store.Binding `json:"bindings"`
}

func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}
	if bindings == nil {
		bindings = []*store.Binding{}
	}
	writeJSON(w, http.StatusOK, listBindingsResponse{Bindings: bindings})
}

func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, cmd gesture.Command) {
	b, err := h.store.Bindings().Get(string(cmd))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Binding not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BindingHandler) put(w http.ResponseWriter, r *http.Request, cmd gesture.Command) {
	var req putBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Plugin == "" {
		writeError(w, http.StatusBadRequest, "plugin is required")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	if len(req.Config) > 0 && !json.Valid(req.Config) {
		writeError(w, http.StatusBadRequest, "config must be valid JSON")
		return
	}

	if h.plugins != nil {
		p, err := h.plugins.Get(req.Plugin)
		if err != nil {
			if errors.Is(err, plugin.ErrPluginNotFound) {
				writeError(w, http.StatusBadRequest, "Plugin not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to look up plugin")
			return
		}
		if !p.Manifest.Supports(req.Action) {
			writeError(w, http.StatusBadRequest, "Plugin does not support action")
			return
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	b := &store.Binding{
		Command:    string(cmd),
		PluginName: req.Plugin,
		ActionName: req.Action,
		Config:     req.Config,
		Enabled:    enabled,
	}
	if err := h.store.Bindings().Upsert(b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save binding")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, cmd gesture.Command) {
	if err := h.store.Bindings().Delete(string(cmd)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
