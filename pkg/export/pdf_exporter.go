package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// pdfMaxCellRunes keeps long reflections from overflowing their table cell.
const pdfMaxCellRunes = 60

// PDFExporter renders a Dataset as a landscape A4 table. Journal exports
// carry nine-plus columns, so portrait orientation is never wide enough.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render builds the document with a title banner, a repeating header row on
// page breaks, striped body rows and a page-number footer.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf export needs at least one column")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Halaman %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	colWidth := 277.0 / float64(len(data.Headers))
	writeHeaderRow := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Dibuat "+time.Now().Format("02-01-2006 15:04"), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	writeHeaderRow()

	pdf.SetFont("Arial", "", 8)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	for i, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottomMargin-12 {
			pdf.AddPage()
			writeHeaderRow()
			pdf.SetFont("Arial", "", 8)
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, truncateCell(row[header]), "1", 0, "", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncateCell(value string) string {
	runes := []rune(value)
	if len(runes) <= pdfMaxCellRunes {
		return value
	}
	return string(runes[:pdfMaxCellRunes-3]) + "..."
}
