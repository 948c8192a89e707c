package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// PDFExporter renders a lookup report as a downloadable PDF document
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export generates a professional PDF from a vulnerability report
func (e *PDFExporter) Export(report *domain.CVEReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addSeverityBanner(pdf, report)
	e.addOverview(pdf, report)
	e.addDescription(pdf, report)
	e.addWeaknesses(pdf, report)
	e.addExploits(pdf, report)
	e.addRecommendations(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, report.CVEID, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(100, 100, 100) // Gray
	pdf.CellFormat(0, 8, "Vulnerability Analysis Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")

	if report.Published != nil {
		pdf.CellFormat(0, 6, "Published: "+*report.Published, "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
}

// addSeverityBanner adds the prominent severity display
func (e *PDFExporter) addSeverityBanner(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	severity := "UNKNOWN"
	if report.Severity != nil {
		severity = *report.Severity
	}
	r, g, b := e.getSeverityColor(severity)

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")

	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 36)
	pdf.SetTextColor(255, 255, 255) // White
	pdf.SetXY(25, y+5)
	scoreStr := "N/A"
	if report.CVSSScore != nil {
		scoreStr = fmt.Sprintf("%.1f/10", *report.CVSSScore)
	}
	pdf.CellFormat(80, 20, scoreStr, "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, severity, "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)
	pdf.Ln(5)
}

// getSeverityColor returns RGB color based on severity tier
func (e *PDFExporter) getSeverityColor(severity string) (r, g, b int) {
	switch severity {
	case domain.SeverityCritical:
		return 220, 53, 69 // Red
	case domain.SeverityHigh:
		return 255, 149, 0 // Orange
	case domain.SeverityMedium:
		return 255, 204, 0 // Yellow
	case domain.SeverityLow:
		return 52, 199, 89 // Green
	default:
		return 150, 150, 150 // Gray
	}
}

// addOverview adds the scoring and attack vector overview grid
func (e *PDFExporter) addOverview(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Risk Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value string
	}{
		{"CVSS Vector", optionalText(report.CVSSVector)},
		{"EPSS Score", optionalFloat(report.EPSSScore)},
		{"EPSS Percentile", optionalFloat(report.EPSSPercentile)},
		{"Attack Vector", optionalText(report.AttackVector)},
		{"Attack Complexity", optionalText(report.AttackComplexity)},
		{"Privileges Required", optionalText(report.Privileges)},
		{"User Interaction", optionalText(report.UserInteraction)},
		{"Last Modified", optionalText(report.Modified)},
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}

		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		value := stat.value
		if len(value) > 24 {
			value = value[:21] + "..."
		}
		pdf.CellFormat(colWidth-50, 7, value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}

	pdf.Ln(10)
}

// addDescription adds the vulnerability description
func (e *PDFExporter) addDescription(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Description", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.MultiCell(0, 5, report.Description, "", "L", false)
	pdf.Ln(8)
}

// addWeaknesses adds the weakness classification table
func (e *PDFExporter) addWeaknesses(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	var weaknesses []domain.EnrichedWeakness
	if err := json.Unmarshal([]byte(report.Weaknesses), &weaknesses); err != nil || len(weaknesses) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Weakness Classification", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Table header
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)

	pdf.CellFormat(25, 8, "CWE", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(120, 8, "Description", "1", 1, "L", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 9)
	for _, weakness := range weaknesses {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(25, 7, weakness.ID, "1", 0, "C", false, 0, "")

		r, g, b := e.getSeverityColor(weakness.Severity)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(25, 7, weakness.Severity, "1", 0, "C", false, 0, "")

		description := weakness.Description
		if len(description) > 70 {
			description = description[:67] + "..."
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(120, 7, description, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
}

// addExploits adds the known exploit evidence list
func (e *PDFExporter) addExploits(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Known Exploits", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	var exploits []domain.KnownExploit
	if err := json.Unmarshal([]byte(report.KnownExploits), &exploits); err != nil || len(exploits) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No public exploit evidence found", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	for _, exploit := range exploits {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		source := exploit.Source
		if len(source) > 90 {
			source = source[:87] + "..."
		}
		pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "• "+exploit.Type+": "+source, "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
}

// addRecommendations renders the prioritized remediation actions
func (e *PDFExporter) addRecommendations(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	var intel domain.ThreatIntelligence
	if err := json.Unmarshal([]byte(report.ThreatIntelligence), &intel); err != nil || len(intel.Recommendations) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Priority Recommendations", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for i, rec := range intel.Recommendations {
		if i >= 5 { // Limit to 5 recommendations
			break
		}

		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		// Priority badge
		r, g, b := e.getPriorityColor(rec.Priority)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, rec.Priority, "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 6, "  "+rec.Action, "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, rec.Rationale, "", "L", false)

		pdf.Ln(4)
	}
}

// getPriorityColor returns RGB color based on priority
func (e *PDFExporter) getPriorityColor(priority string) (r, g, b int) {
	switch priority {
	case domain.PriorityHigh:
		return 220, 53, 69 // Red
	case domain.PriorityMedium:
		return 255, 149, 0 // Orange
	default:
		return 52, 199, 89 // Green
	}
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.CVEReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	reportID := report.ID
	if len(reportID) > 8 {
		reportID = reportID[:8]
	}
	footerText := fmt.Sprintf("Generated by vulnscope | Report ID: %s", reportID)
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")
}

func optionalText(value *string) string {
	if value == nil || *value == "" {
		return "N/A"
	}
	return *value
}

func optionalFloat(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", *value)
}
