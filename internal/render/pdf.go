// File: internal/render/pdf.go
package render

import (
	"bytes"
	"context"
	"time"

	"github.com/go-pdf/fpdf"

	"docstudio/internal/domain/ports/adapter"
)

// Compile-time assurance this renderer satisfies the port
var _ adapter.Renderer = (*PDFRenderer)(nil)

// PDFRenderer renders the model to a single fixed A4 template: centered
// cover, then one page per section. Each call builds a fresh fpdf
// document, so there is no shared renderer state between renders.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Render(ctx context.Context, m adapter.RenderModel) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.SetAutoPageBreak(true, 25)
	// pin the embedded timestamps and sort catalog entries so identical
	// models produce identical bytes
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetModificationDate(time.Unix(0, 0).UTC())
	pdf.SetCatalogSort(true)

	// cover
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetY(100)
	pdf.MultiCell(0, 14, m.Cover.Title, "", "C", false)
	if m.Cover.Subtitle != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 14)
		pdf.SetTextColor(102, 102, 102)
		pdf.MultiCell(0, 7, m.Cover.Subtitle, "", "C", false)
		pdf.SetTextColor(0, 0, 0)
	}

	for _, page := range m.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 20)
		pdf.MultiCell(0, 10, page.Heading, "", "L", false)
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, page.Body, "", "J", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
