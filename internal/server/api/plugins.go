package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginHandler lists discovered plugins.
type PluginHandler struct {
	plugins PluginSource
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(p PluginSource) *PluginHandler {
	return &PluginHandler{plugins: p}
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := listPluginsResponse{Plugins: []plugin.Manifest{}}
	for _, p := range h.plugins.List() {
		resp.Plugins = append(resp.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, resp)
}
