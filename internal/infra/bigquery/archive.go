// Package bigquery archives parsed statements in BigQuery for analytics:
// one audit row per parsing run, the extracted text and every accepted
// transaction.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

const (
	parsingRunsTable  = "parsing_runs"
	extractionsTable  = "extractions"
	transactionsTable = "statement_transactions"
)

// Archive holds a shared BigQuery client for one dataset.
type Archive struct {
	client  *bigquery.Client
	dataset string
}

// NewArchive creates a client for projectID. Close releases it.
func NewArchive(ctx context.Context, projectID, dataset string) (*Archive, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewArchive: project ID is required")
	}
	if dataset == "" {
		dataset = "finance"
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewArchive: creating client: %w", err)
	}
	return &Archive{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (a *Archive) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func (a *Archive) table(name string) string {
	return "`" + a.client.Project() + "." + a.dataset + "." + name + "`"
}

// exec runs a parameterized DML statement and waits for it to finish.
func (a *Archive) exec(ctx context.Context, op, sql string, params []bigquery.QueryParameter) error {
	q := a.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: running query: %w", op, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: waiting for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}
	return nil
}
