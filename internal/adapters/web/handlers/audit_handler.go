package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

// AuditHandler handles audit logging operations
type AuditHandler struct {
	Service ports.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{
		Service: service,
	}
}

// HandleGetLogs returns audit logs
func (h *AuditHandler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.Service.GetLogs(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to fetch audit logs: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs": logs,
	})
}
