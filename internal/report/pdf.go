// Package report renders a patient's assessment history as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/risk"
)

var palette = map[string][3]int{
	"red":     {220, 38, 38},
	"orange":  {234, 88, 12},
	"amber":   {217, 119, 6},
	"emerald": {5, 150, 105},
}

// Render writes an A4 report of items, which are expected newest first.
func Render(w io.Writer, userID string, items []assessment.Result, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("CareFusion assessment history", false)
	pdf.SetAuthor("CareFusion", false)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Assessment History", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, tr("Patient: "+userID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+generatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(items) == 0 {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 8, "No assessments recorded yet.", "", 1, "L", false, 0, "")
	}

	for _, r := range items {
		display := risk.DisplayFor(r.Level)
		rgb := palette[display.Color]

		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(18, pdf.GetY(), 192, pdf.GetY())
		pdf.Ln(3)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
		pdf.CellFormat(60, 7, display.Label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, r.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"), "", 1, "R", false, 0, "")

		pdf.CellFormat(0, 6, fmt.Sprintf("Route: %s    Overall %.0f  |  Mental %.0f  |  Physical %.0f",
			routeLabel(r.Route), r.OverallRisk, r.MentalScore, r.PhysicalScore), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(r.Reasoning), "", "L", false)

		if len(r.Recommendations) > 0 {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, "Recommendations", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, rec := range r.Recommendations {
				pdf.MultiCell(0, 5, tr("- "+rec), "", "L", false)
			}
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

func routeLabel(r risk.Route) string {
	return strings.ReplaceAll(string(r), "_", " ")
}
