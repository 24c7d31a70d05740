package extract

import (
	"context"

	"github.com/rs/zerolog"
)

// MinEmbeddedText is the length the embedded PDF text must exceed before
// OCR is skipped.
const MinEmbeddedText = 100

// Chain picks an extractor per document kind: embedded PDF text with OCR
// fallback, OCR for images, plain text for text files. It never fails; a
// document nothing can read yields "".
type Chain struct {
	PDF   Extractor
	OCR   Extractor // optional
	Plain Extractor
	log   zerolog.Logger
}

// NewChain wires the default extractors. ocr may be nil when no model is
// configured.
func NewChain(ocr Extractor, log zerolog.Logger) *Chain {
	return &Chain{PDF: PDFText{}, OCR: ocr, Plain: PlainText{}, log: log}
}

func (c *Chain) ExtractText(ctx context.Context, doc Document) (string, error) {
	log := c.log.With().Str("document", doc.Name).Logger()

	switch doc.Kind() {
	case KindText:
		return c.run(ctx, c.Plain, doc, log), nil
	case KindPDF:
		text, err := c.PDF.ExtractText(ctx, doc)
		if err != nil {
			log.Warn().Err(err).Msg("Embedded PDF text unavailable")
		}
		if len(text) > MinEmbeddedText {
			return text, nil
		}
		if c.OCR == nil {
			return text, nil
		}
		log.Info().Int("embedded_chars", len(text)).Msg("Falling back to OCR")
		if ocr := c.run(ctx, c.OCR, doc, log); ocr != "" {
			return ocr, nil
		}
		return text, nil
	default:
		return c.run(ctx, c.OCR, doc, log), nil
	}
}

func (c *Chain) run(ctx context.Context, e Extractor, doc Document, log zerolog.Logger) string {
	if e == nil {
		log.Warn().Msg("No extractor available for document")
		return ""
	}
	text, err := e.ExtractText(ctx, doc)
	if err != nil {
		log.Warn().Err(err).Msg("Text extraction failed")
		return ""
	}
	return text
}

var (
	_ Extractor = PlainText{}
	_ Extractor = PDFText{}
	_ Extractor = (*GeminiOCR)(nil)
	_ Extractor = (*Chain)(nil)
)
