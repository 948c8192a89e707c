package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/reporting"
	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

// ExportHandler handles PDF report downloads
type ExportHandler struct {
	Service  ports.LookupService
	Audit    ports.AuditService
	Exporter *reporting.PDFExporter
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(service ports.LookupService, audit ports.AuditService, exporter *reporting.PDFExporter) *ExportHandler {
	return &ExportHandler{
		Service:  service,
		Audit:    audit,
		Exporter: exporter,
	}
}

// HandleExport runs a lookup and streams the report as PDF
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cveID := domain.NormalizeCVEID(vars["cveId"])

	report, err := h.Service.Lookup(r.Context(), cveID)
	if err != nil {
		writeLookupError(w, cveID, err)
		return
	}

	data, err := h.Exporter.Export(report)
	if err != nil {
		log.Printf("PDF export failed for %s: %v", cveID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF report")
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Log(r.Context(), domain.ActionExport, report.CVEID, "pdf report exported"); err != nil {
			log.Printf("Failed to record audit entry: %v", err)
		}
	}

	filename := fmt.Sprintf("%s_report_%s.pdf", report.CVEID, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}
