package infra

// pdf.go: month report of the billing ledger using go-pdf/fpdf.
// Landscape A4 with one row per day, the nine ledger columns and a footer
// with the month total of "Total del Día".

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// BillingReport is the data of one month of the billing ledger, already
// formatted for output. Rows hold the date followed by the ledger columns.
type BillingReport struct {
	Titulo  string
	Anio    int
	Mes     int
	Headers []string
	Rows    [][]string
	Total   string
}

// GenerateBillingPDF renders the report and returns the PDF bytes.
func GenerateBillingPDF(rep BillingReport) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(rep.Titulo), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%02d/%04d", rep.Mes, rep.Anio), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	cols := len(rep.Headers)
	if cols == 0 {
		return nil, fmt.Errorf("pdf: report without columns")
	}
	// the date column is a bit narrower than the rest
	dateW := contentW * 0.1
	colW := (contentW - dateW) / float64(cols-1)
	width := func(i int) float64 {
		if i == 0 {
			return dateW
		}
		return colW
	}

	// ── Table header ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range rep.Headers {
		pdf.CellFormat(width(i), 6, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rep.Rows {
		for i := 0; i < cols; i++ {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(width(i), 5, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rep.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 6, "Sin registros", "1", 1, "C", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr("Total del mes: "+rep.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
