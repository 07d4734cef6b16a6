package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

const (
	pageMargin  = 10.0
	usableWidth = 190.0

	titleFontSize  = 14.0
	headerFontSize = 10.0
	bodyFontSize   = 9.0

	rowHeight = 6.0
)

// PDFAssembler turns an ordered report document into a single A4 portrait
// PDF, one instrument per page.
type PDFAssembler struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// New creates an empty assembler.
func New() *PDFAssembler {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	return &PDFAssembler{
		pdf: pdf,
		// Core fonts are cp1252; the translator keeps £ signs intact.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// AppendDocument appends every section in document order.
func (a *PDFAssembler) AppendDocument(doc *model.ReportDocument) {
	for _, section := range doc.Sections {
		a.AppendSection(section)
	}
}

// AppendSection lays out one instrument: title, chart, the calculations
// table, then the three statement tables.
func (a *PDFAssembler) AppendSection(section model.ReportSection) {
	a.pdf.AddPage()

	a.pdf.SetFont("Helvetica", "B", titleFontSize)
	a.pdf.CellFormat(usableWidth, 10, a.tr(section.Title), "", 1, "L", false, 0, "")
	a.pdf.Ln(2)

	if section.ChartPath != "" {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		a.pdf.ImageOptions(section.ChartPath, pageMargin, a.pdf.GetY(), usableWidth, 0, true, opts, 0, "")
		a.pdf.Ln(4)
	}

	a.ratioTable(section.Ratios)
	a.statementTable(section.Income)
	a.statementTable(section.Balance)
	a.statementTable(section.Summary)
}

// ratioTable renders the fixed calculations grid. Unavailable values show as
// a dash rather than being dropped.
func (a *PDFAssembler) ratioTable(rows []model.RatioRow) {
	a.pdf.SetFont("Helvetica", "B", headerFontSize)
	a.pdf.CellFormat(usableWidth, rowHeight, "CALCULATIONS", "1", 1, "L", false, 0, "")

	a.pdf.SetFont("Helvetica", "", bodyFontSize)
	labelWidth := usableWidth / 2
	for _, row := range rows {
		a.pdf.CellFormat(labelWidth, rowHeight, a.tr(row.Label), "1", 0, "L", false, 0, "")
		a.pdf.CellFormat(usableWidth-labelWidth, rowHeight, formatRatio(row.Value), "1", 1, "R", false, 0, "")
	}
	a.pdf.Ln(4)
}

// statementTable renders one scraped statement. Empty tables are omitted
// entirely.
func (a *PDFAssembler) statementTable(table model.StatementTable) {
	if len(table.Header) == 0 && len(table.Rows) == 0 {
		return
	}

	if table.Title != "" {
		a.pdf.SetFont("Helvetica", "B", headerFontSize)
		a.pdf.CellFormat(usableWidth, rowHeight+1, a.tr(strings.ToUpper(table.Title)), "", 1, "L", false, 0, "")
	}

	cols := len(table.Header)
	for _, row := range table.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	// Wide first column for line-item labels, equal split for the figures.
	labelWidth := usableWidth * 0.4
	valueWidth := usableWidth
	if cols > 1 {
		valueWidth = (usableWidth - labelWidth) / float64(cols-1)
	}

	cellWidth := func(i int) float64 {
		if cols > 1 && i == 0 {
			return labelWidth
		}
		return valueWidth
	}

	if len(table.Header) > 0 {
		a.pdf.SetFont("Helvetica", "B", bodyFontSize)
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(table.Header) {
				text = table.Header[i]
			}
			a.pdf.CellFormat(cellWidth(i), rowHeight, a.tr(text), "1", 0, "L", false, 0, "")
		}
		a.pdf.Ln(rowHeight)
	}

	a.pdf.SetFont("Helvetica", "", bodyFontSize)
	for _, row := range table.Rows {
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			align := "R"
			if i == 0 {
				align = "L"
			}
			a.pdf.CellFormat(cellWidth(i), rowHeight, a.tr(text), "1", 0, align, false, 0, "")
		}
		a.pdf.Ln(rowHeight)
	}
	a.pdf.Ln(4)
}

// WriteFile writes the assembled PDF, appending the .pdf extension when the
// caller omitted it, and returns the final path.
func (a *PDFAssembler) WriteFile(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		path += ".pdf"
	}
	if err := a.pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf %s: %w", path, err)
	}
	return path, nil
}

func formatRatio(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
