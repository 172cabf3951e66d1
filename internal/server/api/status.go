package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
)

// StatusController reports the pipeline status and toggles detection.
type StatusController interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

// StatusHandler serves GET and PUT /api/status.
type StatusHandler struct {
	app StatusController
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(a StatusController) *StatusHandler {
	return &StatusHandler{app: a}
}

type putStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req putStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.app.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.app.Status())
}
