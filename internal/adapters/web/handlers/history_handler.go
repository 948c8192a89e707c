package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

// HistoryHandler handles the bounded search history
type HistoryHandler struct {
	Service ports.LookupService
	Audit   ports.AuditService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service ports.LookupService, audit ports.AuditService) *HistoryHandler {
	return &HistoryHandler{
		Service: service,
		Audit:   audit,
	}
}

// HandleList returns the retained history, most recent first
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.History(r.Context())
	if err != nil {
		log.Printf("Failed to fetch search history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch search history")
		return
	}

	if entries == nil {
		entries = []domain.SearchEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleClear removes all history entries
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearHistory(r.Context()); err != nil {
		log.Printf("Failed to clear search history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear search history")
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Log(r.Context(), domain.ActionHistoryClear, "search_history", "history cleared"); err != nil {
			log.Printf("Failed to record audit entry: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}
