package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
)

// ExtractionRow keeps the raw text a parsing run worked from.
type ExtractionRow struct {
	ExtractionID  string    `bigquery:"extraction_id"`  // REQUIRED
	ParsingRunID  string    `bigquery:"parsing_run_id"` // REQUIRED
	DocumentName  string    `bigquery:"document_name"`
	ExtractedText string    `bigquery:"extracted_text"`
	CreatedTS     time.Time `bigquery:"created_ts"` // REQUIRED
}

// InsertExtractedText stores the text of one document. Uses DML INSERT to
// avoid streaming buffer issues.
func (a *Archive) InsertExtractedText(ctx context.Context, runID, documentName, text string) error {
	return a.exec(ctx, "InsertExtractedText", `
		INSERT INTO `+a.table(extractionsTable)+` (
			extraction_id, parsing_run_id, document_name, extracted_text, created_ts
		)
		VALUES (
			@extraction_id, @parsing_run_id, @document_name, @extracted_text, @created_ts
		)
	`, []bigquery.QueryParameter{
		{Name: "extraction_id", Value: uuid.NewString()},
		{Name: "parsing_run_id", Value: runID},
		{Name: "document_name", Value: documentName},
		{Name: "extracted_text", Value: text},
		{Name: "created_ts", Value: time.Now()},
	})
}
