package extract

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for image recognition.
const DefaultModelName = "gemini-2.5-flash"

const transcribePrompt = "You are an OCR engine for bank statements.\n\n" +
	"Task:\n" +
	"- Transcribe ALL text in the attached document verbatim.\n" +
	"- Keep one table row per output line, in reading order.\n" +
	"- Keep dates, amounts, signs and currency symbols exactly as printed.\n" +
	"- Do not summarize, translate or reformat.\n\n" +
	"Return ONLY the plain text.\n" +
	"Do NOT wrap the response in code fences.\n"

// generator is the part of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOCR transcribes images and scanned PDFs with a Gemini model.
type GeminiOCR struct {
	models generator
	model  string
}

// NewGeminiOCR creates a client from the environment (GOOGLE_API_KEY or
// Vertex AI settings).
func NewGeminiOCR(ctx context.Context, model string) (*GeminiOCR, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiOCR: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiOCR{models: client.Models, model: model}, nil
}

func (g *GeminiOCR) ExtractText(ctx context.Context, doc Document) (string, error) {
	mime := doc.MIMEType
	if mime == "" {
		switch doc.Kind() {
		case KindPDF:
			mime = "application/pdf"
		default:
			mime = "image/png"
		}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: transcribePrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mime,
						Data:     doc.Data,
					},
				},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GeminiOCR: generate content for %s: %w", doc.Name, err)
	}
	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("GeminiOCR: empty response for %s", doc.Name)
	}
	return cleanLines(stripFences(raw)), nil
}

// stripFences removes a Markdown code fence the model added anyway.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "`")
		}
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
