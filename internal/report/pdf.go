// Package report renders the inventory PDF: a title line with the school
// label, a generation date, a fixed-column table of the visible records and
// a signature block naming the requesting user and role.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/yourorg/inventario/internal/domain"
)

// column layout: header label and cell width in mm
var columns = []struct {
	label string
	width float64
	max   int
}{
	{"Tipo", 25, 15},
	{"Modelo", 40, 20},
	{"Serial", 32, 15},
	{"Patrimônio", 25, 10},
	{"NF", 25, 10},
	{"Situação", 33, 20},
}

// Renderer produces inventory reports. Render is a pure function of its
// inputs; the zero value is ready to use.
type Renderer struct {
	// Now stamps the generation date; defaults to time.Now
	Now func() time.Time
}

// Render builds the PDF document bytes
func (r *Renderer) Render(records []*domain.Asset, tenantLabel, signerName, signerRole string) ([]byte, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// sort resource dictionary keys so identical inputs yield identical bytes
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now())
	pdf.SetModificationDate(now())
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("INVENTÁRIO: %s", tenantLabel)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Gerado em: %s", now().Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	for _, col := range columns {
		pdf.CellFormat(col.width, 8, tr(col.label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, rec := range records {
		values := []string{rec.Type, rec.Model, rec.Serial, rec.PropertyTag, rec.Invoice, rec.Status}
		for i, col := range columns {
			pdf.CellFormat(col.width, 8, tr(truncate(values[i], col.max)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(20)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "_________________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - %s", signerName, signerRole)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate caps a value to the column's character budget, matching the
// fixed layout of the table cells
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
