package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/moneyflow/internal/logger"
	"google.golang.org/genai"
)

// mockExtractor is a mock implementation of Extractor for testing.
type mockExtractor struct {
	ExtractTextFunc func(ctx context.Context, doc Document) (string, error)
	calls           int
}

func (m *mockExtractor) ExtractText(ctx context.Context, doc Document) (string, error) {
	m.calls++
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, doc)
	}
	return "", nil
}

func returning(text string, err error) *mockExtractor {
	return &mockExtractor{ExtractTextFunc: func(context.Context, Document) (string, error) { return text, err }}
}

func TestDocumentKind(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want Kind
	}{
		{"pdf by mime", Document{Name: "x.bin", MIMEType: "application/pdf"}, KindPDF},
		{"image by mime", Document{MIMEType: "image/jpeg"}, KindImage},
		{"text with charset", Document{MIMEType: "text/plain; charset=utf-8"}, KindText},
		{"pdf by extension", Document{Name: "Statement.PDF", MIMEType: "application/octet-stream"}, KindPDF},
		{"image by extension", Document{Name: "scan.jpeg"}, KindImage},
		{"sniffed pdf", Document{Name: "upload", Data: []byte("%PDF-1.4\n%...")}, KindPDF},
		{"unknown", Document{Name: "blob"}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	doc := Document{Name: "s.txt", Data: []byte("01/02/2024  UPI Swiggy   450.00\r\n\r\n  02/02/2024 ATM–1,000.00  ")}
	got, err := PlainText{}.ExtractText(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "01/02/2024 UPI Swiggy 450.00\n\n02/02/2024 ATM-1,000.00"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPDFText_Garbage(t *testing.T) {
	_, err := PDFText{}.ExtractText(context.Background(), Document{Name: "bad.pdf", Data: []byte("not a pdf")})
	if err == nil {
		t.Error("expected error for malformed PDF")
	}
}

func TestChain(t *testing.T) {
	long := strings.Repeat("01/02/2024 UPI Swiggy 450.00 10,000.00\n", 5)
	pdfDoc := Document{Name: "s.pdf", MIMEType: "application/pdf"}
	imgDoc := Document{Name: "s.png", MIMEType: "image/png"}

	tests := []struct {
		name    string
		doc     Document
		pdf     *mockExtractor
		ocr     *mockExtractor
		want    string
		wantOCR int
		noOCR   bool
	}{
		{
			name:    "embedded text long enough",
			doc:     pdfDoc,
			pdf:     returning(long, nil),
			ocr:     returning("ocr", nil),
			want:    long,
			wantOCR: 0,
		},
		{
			name:    "short embedded text falls back to ocr",
			doc:     pdfDoc,
			pdf:     returning("short", nil),
			ocr:     returning("ocr text", nil),
			want:    "ocr text",
			wantOCR: 1,
		},
		{
			name:    "pdf error falls back to ocr",
			doc:     pdfDoc,
			pdf:     returning("", errors.New("broken")),
			ocr:     returning("ocr text", nil),
			want:    "ocr text",
			wantOCR: 1,
		},
		{
			name:    "total failure yields empty text",
			doc:     pdfDoc,
			pdf:     returning("", errors.New("broken")),
			ocr:     returning("", errors.New("quota")),
			want:    "",
			wantOCR: 1,
		},
		{
			name:  "no ocr keeps short embedded text",
			doc:   pdfDoc,
			pdf:   returning("short", nil),
			noOCR: true,
			want:  "short",
		},
		{
			name:    "image goes to ocr",
			doc:     imgDoc,
			pdf:     returning(long, nil),
			ocr:     returning("image text", nil),
			want:    "image text",
			wantOCR: 1,
		},
		{
			name:  "image without ocr",
			doc:   imgDoc,
			pdf:   returning(long, nil),
			noOCR: true,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(nil, logger.NewWithWriter(&bytes.Buffer{}))
			c.PDF = tt.pdf
			if !tt.noOCR {
				c.OCR = tt.ocr
			}

			got, err := c.ExtractText(context.Background(), tt.doc)
			if err != nil {
				t.Fatalf("chain must not fail, got %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.ocr != nil && !tt.noOCR && tt.ocr.calls != tt.wantOCR {
				t.Errorf("ocr calls = %d, want %d", tt.ocr.calls, tt.wantOCR)
			}
		})
	}
}

func TestChain_TextDocument(t *testing.T) {
	c := NewChain(nil, logger.NewWithWriter(&bytes.Buffer{}))
	got, _ := c.ExtractText(context.Background(), Document{Name: "s.txt", Data: []byte(" hello ")})
	if got != "hello" {
		t.Errorf("got %q, want hello", got)
	}
}

// mockGenerator is a mock implementation of generator for testing.
type mockGenerator struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateContentFunc(ctx, model, contents, config)
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: s}}}},
		},
	}
}

func TestGeminiOCR(t *testing.T) {
	var gotModel, gotMIME string
	g := &GeminiOCR{
		model: DefaultModelName,
		models: &mockGenerator{
			GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				gotModel = model
				gotMIME = contents[0].Parts[1].InlineData.MIMEType
				return textResponse("```text\n01/02/2024 UPI  Swiggy 450.00\n```"), nil
			},
		},
	}

	got, err := g.ExtractText(context.Background(), Document{Name: "scan.pdf", Data: []byte("%PDF-1.4")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "01/02/2024 UPI Swiggy 450.00" {
		t.Errorf("got %q", got)
	}
	if gotModel != DefaultModelName || gotMIME != "application/pdf" {
		t.Errorf("model = %q, mime = %q", gotModel, gotMIME)
	}
}

func TestGeminiOCR_EmptyResponse(t *testing.T) {
	g := &GeminiOCR{
		model: DefaultModelName,
		models: &mockGenerator{
			GenerateContentFunc: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return textResponse("   "), nil
			},
		},
	}
	if _, err := g.ExtractText(context.Background(), Document{Name: "scan.png"}); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"```\nabc\n```", "abc"},
		{"```text\na\nb\n```\n", "a\nb"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
