package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// historyEntry is the JSON view of a single recorded value.
type historyEntry struct {
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// historyResponse is the JSON payload for the history endpoint.
type historyResponse struct {
	Device   string         `json:"device"`
	Node     string         `json:"node"`
	Property string         `json:"property"`
	Entries  []historyEntry `json:"entries"`
}

// handleGetHistory returns recent published values for a property,
// newest first.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "value history is not configured")
		return
	}

	nodeID := chi.URLParam(r, "node")
	propertyID := chi.URLParam(r, "property")

	node := s.device.Node(nodeID)
	if node == nil {
		writeNotFound(w, "node not found")
		return
	}
	if node.Property(propertyID) == nil {
		writeNotFound(w, "property not found")
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	records, err := s.history.Recent(r.Context(), s.device.ID(), nodeID, propertyID, limit)
	if err != nil {
		s.logger.Error("querying value history", "node", nodeID, "property", propertyID, "error", err)
		writeInternalError(w, "failed to query value history")
		return
	}

	resp := historyResponse{
		Device:   s.device.ID(),
		Node:     nodeID,
		Property: propertyID,
		Entries:  make([]historyEntry, 0, len(records)),
	}
	for _, rec := range records {
		resp.Entries = append(resp.Entries, historyEntry{
			Value:      rec.Value,
			RecordedAt: rec.RecordedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseHistoryLimit parses the limit query parameter.
// An empty value selects the default; the maximum is clamped.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit, nil
}
