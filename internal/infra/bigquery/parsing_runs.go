package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/google/uuid"
)

// Parsing run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

const (
	parserType    = "STATEMENT_TEXT"
	parserVersion = "v1"
	maxErrorLen   = 2000
)

type ParsingRunRow struct {
	ParsingRunID string `bigquery:"parsing_run_id"` // REQUIRED
	UserID       string `bigquery:"user_id"`        // REQUIRED
	SourceURI    string `bigquery:"source_uri"`     // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	ParserType    string `bigquery:"parser_type"`
	ParserVersion string `bigquery:"parser_version"`

	Status           string             `bigquery:"status"`
	ErrorMessage     string             `bigquery:"error_message"`
	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE
}

// StartParsingRun inserts a parsing_runs row with status=RUNNING and
// returns its ID.
func (a *Archive) StartParsingRun(ctx context.Context, userID, sourceURI string) (string, error) {
	runID := uuid.NewString()

	err := a.exec(ctx, "StartParsingRun", `
		INSERT `+a.table(parsingRunsTable)+` (
			parsing_run_id, user_id, source_uri, started_ts,
			parser_type, parser_version, status, error_message
		)
		VALUES (
			@parsing_run_id, @user_id, @source_uri, @started_ts,
			@parser_type, @parser_version, @status, ""
		)
	`, []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: runID},
		{Name: "user_id", Value: userID},
		{Name: "source_uri", Value: sourceURI},
		{Name: "started_ts", Value: time.Now()},
		{Name: "parser_type", Value: parserType},
		{Name: "parser_version", Value: parserVersion},
		{Name: "status", Value: RunStatusRunning},
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// MarkParsingRunFailed records parseErr on the run. Failures to update
// are logged, not returned, so the original error stays the one reported.
func (a *Archive) MarkParsingRunFailed(ctx context.Context, runID string, parseErr error) {
	err := a.exec(ctx, "MarkParsingRunFailed", `
		UPDATE `+a.table(parsingRunsTable)+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE parsing_run_id = @parsing_run_id
	`, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errorMessage(parseErr)},
		{Name: "parsing_run_id", Value: runID},
	})
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("parsing_run_id", runID).Msg("Failed to mark parsing run failed")
	}
}

// MarkParsingRunSucceeded closes the run with the number of archived
// transactions.
func (a *Archive) MarkParsingRunSucceeded(ctx context.Context, runID string, count int) error {
	return a.exec(ctx, "MarkParsingRunSucceeded", `
		UPDATE `+a.table(parsingRunsTable)+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    transaction_count = @transaction_count
		WHERE parsing_run_id = @parsing_run_id
	`, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "transaction_count", Value: int64(count)},
		{Name: "parsing_run_id", Value: runID},
	})
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}
