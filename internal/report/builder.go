package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// DocumentBuilder is the drawing capability the renderer writes against.
// Implementations measure every block before placing it and insert their
// own page breaks, which keeps the renderer library-agnostic.
type DocumentBuilder interface {
	AddHeading(text string)
	AddParagraph(text string)
	AddBulletList(items []string)
	AddLabeledValue(label, value string)
	PageBreak()
	PageCount() int
	Output() ([]byte, error)
}

// Page geometry in millimeters (A4 portrait).
const (
	pageMarginMM   = 18.0
	interBlockGap  = 4.0
	headingLineMM  = 9.0
	bodyLineMM     = 6.0
	bulletIndentMM = 5.0
)

type textStyle struct {
	size    float64
	variant string // "" regular, "B" bold
	r, g, b int
}

// Fixed style table: role to font size, weight and color.
var (
	headingStyle = textStyle{size: 16, variant: "B", r: 15, g: 76, b: 70}
	bodyStyle    = textStyle{size: 11, variant: "", r: 45, g: 45, b: 45}
	labelStyle   = textStyle{size: 11, variant: "B", r: 20, g: 20, b: 20}
)

type pdfBuilder struct {
	pdf      *fpdf.Fpdf
	cursorY  float64
	pageW    float64
	pageH    float64
	margin   float64
	contentW float64
}

func NewPDFBuilder() *pdfBuilder {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Fixed creation date keeps the bytes identical across re-renders of
	// the same order.
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	return &pdfBuilder{
		pdf:      pdf,
		cursorY:  pageMarginMM,
		pageW:    pageW,
		pageH:    pageH,
		margin:   pageMarginMM,
		contentW: pageW - 2*pageMarginMM,
	}
}

func (b *pdfBuilder) setStyle(s textStyle) {
	b.pdf.SetFont("Helvetica", s.variant, s.size)
	b.pdf.SetTextColor(s.r, s.g, s.b)
}

// ensureRoom measures a block as a whole unit: if it cannot finish on the
// current page but would fit on a fresh one, break first. Blocks taller
// than a full page start immediately and split at line boundaries.
func (b *pdfBuilder) ensureRoom(height float64) {
	limit := b.pageH - b.margin
	if b.cursorY+height <= limit {
		return
	}
	if height <= limit-b.margin {
		b.PageBreak()
	}
}

// writeLines draws pre-wrapped lines, breaking between lines when the next
// one would cross the bottom margin.
func (b *pdfBuilder) writeLines(lines []string, lineH, x, w float64) {
	for _, line := range lines {
		if b.cursorY+lineH > b.pageH-b.margin {
			b.PageBreak()
		}
		b.pdf.SetXY(x, b.cursorY)
		b.pdf.CellFormat(w, lineH, line, "", 0, "L", false, 0, "")
		b.cursorY += lineH
	}
}

func (b *pdfBuilder) AddHeading(text string) {
	b.setStyle(headingStyle)
	lines := b.pdf.SplitText(text, b.contentW)
	b.ensureRoom(float64(len(lines)) * headingLineMM)
	b.writeLines(lines, headingLineMM, b.margin, b.contentW)
	b.cursorY += interBlockGap
}

func (b *pdfBuilder) AddParagraph(text string) {
	b.setStyle(bodyStyle)
	lines := b.pdf.SplitText(text, b.contentW)
	b.ensureRoom(float64(len(lines)) * bodyLineMM)
	b.writeLines(lines, bodyLineMM, b.margin, b.contentW)
	b.cursorY += interBlockGap
}

func (b *pdfBuilder) AddBulletList(items []string) {
	b.setStyle(bodyStyle)
	itemWidth := b.contentW - bulletIndentMM

	wrapped := make([][]string, 0, len(items))
	total := 0
	for _, item := range items {
		lines := b.pdf.SplitText(item, itemWidth)
		wrapped = append(wrapped, lines)
		total += len(lines)
	}
	b.ensureRoom(float64(total) * bodyLineMM)

	for _, lines := range wrapped {
		for i, line := range lines {
			if b.cursorY+bodyLineMM > b.pageH-b.margin {
				b.PageBreak()
			}
			if i == 0 {
				b.pdf.SetXY(b.margin, b.cursorY)
				b.pdf.CellFormat(bulletIndentMM, bodyLineMM, "-", "", 0, "L", false, 0, "")
			}
			b.pdf.SetXY(b.margin+bulletIndentMM, b.cursorY)
			b.pdf.CellFormat(itemWidth, bodyLineMM, line, "", 0, "L", false, 0, "")
			b.cursorY += bodyLineMM
		}
	}
	b.cursorY += interBlockGap
}

func (b *pdfBuilder) AddLabeledValue(label, value string) {
	b.setStyle(labelStyle)
	labelText := label + ": "
	labelW := b.pdf.GetStringWidth(labelText)
	if labelW > b.contentW/2 {
		labelW = b.contentW / 2
	}

	b.setStyle(bodyStyle)
	valueLines := b.pdf.SplitText(value, b.contentW-labelW)
	b.ensureRoom(float64(len(valueLines)) * bodyLineMM)

	if b.cursorY+bodyLineMM > b.pageH-b.margin {
		b.PageBreak()
	}
	b.setStyle(labelStyle)
	b.pdf.SetXY(b.margin, b.cursorY)
	b.pdf.CellFormat(labelW, bodyLineMM, labelText, "", 0, "L", false, 0, "")

	b.setStyle(bodyStyle)
	b.writeLines(valueLines, bodyLineMM, b.margin+labelW, b.contentW-labelW)
	b.cursorY += interBlockGap
}

func (b *pdfBuilder) PageBreak() {
	b.pdf.AddPage()
	b.cursorY = b.margin
}

func (b *pdfBuilder) PageCount() int {
	return b.pdf.PageNo()
}

func (b *pdfBuilder) Output() ([]byte, error) {
	if b.pdf.Err() {
		return nil, fmt.Errorf("document in error state: %w", b.pdf.Error())
	}
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
