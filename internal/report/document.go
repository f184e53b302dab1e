package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimeters (US Letter, 0.75in side and 1.5in top/bottom margins)
const (
	marginSide   = 19.05
	marginTop    = 38.1
	marginBottom = 38.1

	logoSize    = 17.6
	lineHeight  = 5.5
	rowHeight   = 7
	sectionGap  = 6
	chartHeight = 95
)

// Palette
var (
	colorHeaderFill = [3]int{128, 128, 128}
	colorHeaderText = [3]int{245, 245, 245}
	colorBodyFill   = [3]int{245, 245, 220}
	colorBar        = [3]int{31, 119, 180}
	colorStation    = [3]int{214, 39, 40}
	colorAxis       = [3]int{60, 60, 60}
	colorGrid       = [3]int{220, 220, 220}
)

// document wraps fpdf with the report's page layout
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string

	pageW, pageH float64
}

func newDocument(title, author string) *document {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(author, true)
	pdf.SetCreator(title, true)
	pdf.AliasNbPages("")

	w, h := pdf.GetPageSize()
	return &document{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		pageW: w,
		pageH: h,
	}
}

// contentWidth is the printable width between the side margins
func (d *document) contentWidth() float64 {
	return d.pageW - 2*marginSide
}

// setHeaderFooter installs the logo/date header and the confidentiality footer
func (d *document) setHeaderFooter(logoPath, headerText, footerText string) {
	pdf := d.pdf
	pdf.SetHeaderFunc(func() {
		pdf.ImageOptions(logoPath, marginSide-1.5, 10, logoSize, logoSize, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginSide, 16)
		pdf.CellFormat(d.contentWidth(), 6, d.tr(headerText), "", 0, "R", false, 0, "")
		pdf.SetY(marginTop)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-20)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 5, d.tr(footerText), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// ensureSpace starts a new page when h millimeters do not fit on this one
func (d *document) ensureSpace(h float64) {
	if d.pdf.GetY()+h > d.pageH-marginBottom {
		d.pdf.AddPage()
	}
}

func (d *document) heading(text string) {
	d.ensureSpace(12 + rowHeight*2)
	d.pdf.Ln(sectionGap)
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 8, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
	d.pdf.Ln(3)
}

// table draws a grid with a grey header row and beige body rows. widths
// are fractions of the content width; align holds one fpdf alignment per column.
func (d *document) table(header []string, rows [][]string, widths []float64, align []string) {
	pdf := d.pdf
	total := d.contentWidth()

	cols := make([]float64, len(widths))
	for i, w := range widths {
		cols[i] = w * total
	}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(colorHeaderFill[0], colorHeaderFill[1], colorHeaderFill[2])
		pdf.SetTextColor(colorHeaderText[0], colorHeaderText[1], colorHeaderText[2])
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.2)
		for i, h := range header {
			pdf.CellFormat(cols[i], rowHeight+1, d.tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	d.ensureSpace(rowHeight * 2)
	drawHeader()

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		if pdf.GetY()+rowHeight > d.pageH-marginBottom {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Helvetica", "", 9)
		}
		pdf.SetFillColor(colorBodyFill[0], colorBodyFill[1], colorBodyFill[2])
		pdf.SetTextColor(0, 0, 0)
		for i, cell := range row {
			text := d.fit(d.tr(cell), cols[i]-2)
			pdf.CellFormat(cols[i], rowHeight, text, "1", 0, align[i], true, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(total, rowHeight, "No data", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
}

// fit shortens an already translated string with an ellipsis until it is
// narrower than w in the current font. Translated text is single-byte.
func (d *document) fit(s string, w float64) string {
	if d.pdf.GetStringWidth(s) <= w {
		return s
	}
	const ellipsis = "..."
	b := []byte(s)
	for len(b) > 0 && d.pdf.GetStringWidth(string(b)+ellipsis) > w {
		b = b[:len(b)-1]
	}
	return strings.TrimSpace(string(b)) + ellipsis
}
