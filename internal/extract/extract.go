// Package extract turns uploaded statements into raw text for the parser.
package extract

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dvloznov/moneyflow/internal/statement"
)

// Document is an uploaded file.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Kind is the broad document family used to pick an extractor.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindPDF
	KindImage
)

// Kind classifies d by MIME type, then extension, then content sniffing.
func (d Document) Kind() Kind {
	if k := kindOfMIME(d.MIMEType); k != KindUnknown {
		return k
	}
	switch strings.ToLower(filepath.Ext(d.Name)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".webp", ".heic", ".gif":
		return KindImage
	case ".txt", ".csv":
		return KindText
	}
	if len(d.Data) > 0 {
		return kindOfMIME(http.DetectContentType(d.Data))
	}
	return KindUnknown
}

func kindOfMIME(mime string) Kind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case mime == "application/pdf":
		return KindPDF
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "text/"):
		return KindText
	}
	return KindUnknown
}

// Extractor returns the text content of a document.
type Extractor interface {
	ExtractText(ctx context.Context, doc Document) (string, error)
}

// PlainText reads UTF-8 text documents.
type PlainText struct{}

func (PlainText) ExtractText(ctx context.Context, doc Document) (string, error) {
	s := string(doc.Data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return cleanLines(s), nil
}

// cleanLines normalizes every line and drops CR characters.
func cleanLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	for i, line := range lines {
		lines[i] = statement.Normalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
