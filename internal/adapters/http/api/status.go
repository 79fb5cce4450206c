// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// Service identity reported by the status endpoint.
const (
	serviceName    = "orquesta"
	serviceVersion = "1.0.0"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatusHandler handles status requests.
type StatusHandler struct {
	statsProvider StatsProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(statsProvider StatsProvider) *StatusHandler {
	return &StatusHandler{statsProvider: statsProvider}
}

// HandleStatus handles GET /v1/status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range h.statsProvider.GetStats() {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}
