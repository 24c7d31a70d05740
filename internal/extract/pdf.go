package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the text layer embedded in a PDF. Scanned PDFs yield little
// or no text.
type PDFText struct{}

func (PDFText) ExtractText(ctx context.Context, doc Document) (text string, err error) {
	// the decoder panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("PDFText: decode %s: %v", doc.Name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("PDFText: open %s: %w", doc.Name, err)
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("PDFText: page %d of %s: %w", i, doc.Name, err)
		}
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
	}
	return cleanLines(strings.Join(lines, "\n")), nil
}

// joinRow concatenates the text runs of one row, inserting a space where
// the runs are visibly apart.
func joinRow(content pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range content {
		if i > 0 && t.X-prevEnd > 1 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}
