package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/jung-kurt/gofpdf"
)

// PDFExporter exports run summaries to PDF format
type PDFExporter struct {
	// GeneratedBy is printed in the footer.
	GeneratedBy string
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{GeneratedBy: "dronedeauth"}
}

// ExportRunSummary renders the outcome of one run.
func (e *PDFExporter) ExportRunSummary(summary *domain.RunSummary) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("failed to generate PDF: nil summary")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; ESSIDs may not be.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, summary)
	e.addStatistics(pdf, summary)
	e.addAttacks(pdf, summary, tr)
	e.addDropped(pdf, summary, tr)
	e.addFooter(pdf, summary)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, s *domain.RunSummary) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Deauthentication Run Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Session: %s", s.SessionID), "", 1, "L", false, 0, "")
	if !s.StartTime.IsZero() {
		period := fmt.Sprintf("Run: %s to %s (%s)",
			s.StartTime.Format("2006-01-02 15:04:05"),
			s.EndTime.Format("15:04:05"),
			s.EndTime.Sub(s.StartTime).Round(time.Second))
		pdf.CellFormat(0, 6, period, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, s *domain.RunSummary) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value int
		color []int
	}{
		{"Networks discovered", s.Discovered, []int{0, 102, 204}},
		{"Target networks", s.Matched, []int{0, 102, 204}},
		{"Attacked", len(s.Attacks), []int{0, 102, 204}},
		{"Skipped by safety cap", len(s.Dropped), []int{150, 150, 150}},
		{"Completed", s.Completed(), []int{52, 199, 89}},
		{"Failed", s.Failed(), []int{220, 53, 69}},
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

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, fmt.Sprintf("%d", stat.value), "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(10)
}

func (e *PDFExporter) addAttacks(pdf *gofpdf.Fpdf, s *domain.RunSummary, tr func(string) string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Network Attacks", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(s.Attacks) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No networks were attacked", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(50, 8, "ESSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "BSSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(12, 8, "CH", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 8, "Clients", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Mode", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Result", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, a := range s.Attacks {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
		essid := a.Network.ESSID
		if len(essid) > 28 {
			essid = essid[:25] + "..."
		}
		mode := "per-client"
		if a.Broadcast {
			mode = "broadcast"
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(50, 7, tr(essid), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, a.Network.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", a.Network.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%d", len(a.Clients)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, mode, "1", 0, "C", false, 0, "")

		r, g, b := e.getStateColor(a.State)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(25, 7, string(a.State), "1", 1, "C", false, 0, "")

		if a.Error != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(150, 150, 150)
			pdf.MultiCell(0, 5, tr("  "+a.Error), "", "L", false)
			pdf.SetFont("Arial", "", 9)
		}
	}
	pdf.Ln(8)
}

// getStateColor returns RGB color based on attack state
func (e *PDFExporter) getStateColor(state domain.AttackState) (r, g, b int) {
	switch state {
	case domain.AttackCompleted:
		return 52, 199, 89 // Green
	case domain.AttackFailed:
		return 220, 53, 69 // Red
	default:
		return 255, 149, 0 // Orange
	}
}

func (e *PDFExporter) addDropped(pdf *gofpdf.Fpdf, s *domain.RunSummary, tr func(string) string) {
	if len(s.Dropped) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Skipped by Safety Cap", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	for _, n := range s.Dropped {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("- %s", n)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, s *domain.RunSummary) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := s.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s | Session ID: %s", e.GeneratedBy, id), "", 1, "C", false, 0, "")
}
