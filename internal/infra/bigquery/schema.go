package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// EnsureTables creates the dataset and archive tables when missing.
// Schemas are inferred from the row structs.
func (a *Archive) EnsureTables(ctx context.Context) error {
	ds := a.client.Dataset(a.dataset)
	if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTables: create dataset %s: %w", a.dataset, err)
	}

	tables := []struct {
		name      string
		row       interface{}
		partition string
	}{
		{parsingRunsTable, ParsingRunRow{}, ""},
		{extractionsTable, ExtractionRow{}, ""},
		{transactionsTable, StatementTransactionRow{}, "transaction_date"},
	}

	for _, t := range tables {
		schema, err := bigquery.InferSchema(t.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: infer schema for %s: %w", t.name, err)
		}
		meta := &bigquery.TableMetadata{Schema: schema}
		if t.partition != "" {
			meta.TimePartitioning = &bigquery.TimePartitioning{Field: t.partition}
		}
		if err := ds.Table(t.name).Create(ctx, meta); err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("EnsureTables: create table %s: %w", t.name, err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
