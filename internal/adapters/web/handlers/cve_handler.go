package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

// CVEHandler handles vulnerability lookup operations
type CVEHandler struct {
	Service ports.LookupService
	Audit   ports.AuditService
}

// NewCVEHandler creates a new CVEHandler
func NewCVEHandler(service ports.LookupService, audit ports.AuditService) *CVEHandler {
	return &CVEHandler{
		Service: service,
		Audit:   audit,
	}
}

// HandleLookup resolves one CVE identifier into a full report
func (h *CVEHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cveID := domain.NormalizeCVEID(vars["cveId"])

	report, err := h.Service.Lookup(r.Context(), cveID)
	if err != nil {
		writeLookupError(w, cveID, err)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Log(r.Context(), domain.ActionLookup, report.CVEID, "lookup completed"); err != nil {
			log.Printf("Failed to record audit entry: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleCount reports the number of stored raw records
func (h *CVEHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count records: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to count records")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

// writeLookupError maps pipeline errors onto HTTP statuses: bad
// identifiers are the client's fault, missing records are 404 and
// everything else is internal.
func writeLookupError(w http.ResponseWriter, cveID string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCVEID):
		writeError(w, http.StatusBadRequest, "Invalid CVE ID format. Expected format: CVE-YYYY-NNNN")
	case errors.Is(err, domain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "CVE not found: "+cveID)
	default:
		log.Printf("Lookup failed for %s: %v", cveID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch CVE data")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
