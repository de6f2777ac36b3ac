package digest

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// PDFRenderer renders a run result as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the run result into PDF bytes.
func (r *PDFRenderer) Render(title string, result *core.RunResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(4)

	if result.Warning != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(160, 90, 0)
		pdf.MultiCell(0, 5, result.Warning, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	}

	if len(result.Items) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "Nothing matched this briefing.", "", "L", false)
	}

	for _, item := range result.Items {
		heading := item.Title
		if heading == "" {
			heading = item.URL
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, heading, "", "L", false)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		source := "Source: " + item.URL
		if item.PublishDate != nil {
			source = fmt.Sprintf("%s — published %s", source, *item.PublishDate)
		}
		pdf.MultiCell(0, 5, source, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, item.Content, "", "L", false)
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d of %d links extracted",
		result.Metadata.ArticlesExtracted, result.Metadata.TotalLinksFound), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}
