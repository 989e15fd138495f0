package handlers

import (
	"net/http"

	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

// SystemHandler handles health and version HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// Health reports process and database health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.systemService.Check(r.Context())
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

// Version reports the build version
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": service.Version})
}
