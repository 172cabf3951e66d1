package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultEventLimit is how many events GET /api/events returns without ?limit.
const DefaultEventLimit = 50

// EventHandler serves the command event log.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP routes /api/events and /api/events/stats.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.clear(w, r)
	case path == "stats" && r.Method == http.MethodGet:
		h.stats(w, r)
	case path == "" || path == "stats":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *EventHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Events().CountByCommand()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts, Total: total})
}

func (h *EventHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Events().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear events")
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: n})
}
