// Package pipeline turns uploaded bank statements into expenses: fetch,
// extract text, parse, categorize, archive and persist.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/jobs"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/rs/zerolog"
)

// Request describes one statement to ingest.
type Request struct {
	UserID     string
	SourceURI  string
	DebitOnly  bool
	Categories []string
}

// Result is what a run produced.
type Result struct {
	RunID        string               `json:"run_id,omitempty"`
	Document     string               `json:"document,omitempty"`
	RawText      string               `json:"raw_text"`
	Transactions []domain.Transaction `json:"transactions"`
	Inserted     int                  `json:"inserted"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Ingestor runs the ingestion pipeline with parsing-run tracking.
type Ingestor struct {
	storage   StorageService
	extractor extract.Extractor
	expenses  ExpenseWriter
	archive   TransactionArchive
	runs      RunTracker
	log       zerolog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithArchive adds the archive step. Without it nothing is archived.
func WithArchive(archive TransactionArchive) Option {
	return func(in *Ingestor) {
		in.archive = archive
	}
}

// WithRunTracker records every run. Without it runs are not tracked.
func WithRunTracker(runs RunTracker) Option {
	return func(in *Ingestor) {
		in.runs = runs
	}
}

// NewIngestor wires the pipeline. storage may be nil when only Preview is
// used.
func NewIngestor(storage StorageService, extractor extract.Extractor, expenses ExpenseWriter, log zerolog.Logger, opts ...Option) *Ingestor {
	in := &Ingestor{
		storage:   storage,
		extractor: extractor,
		expenses:  expenses,
		log:       log,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Ingestor) steps() *Pipeline {
	steps := []PipelineStep{
		&FetchDocumentStep{Storage: in.storage},
		&ExtractTextStep{Extractor: in.extractor},
		&ParseTransactionsStep{},
		&CategorizeTransactionsStep{},
	}
	// archive first: rows of a failed run are ignored, expenses are not
	if in.archive != nil {
		steps = append(steps, &ArchiveTransactionsStep{Archive: in.archive})
	}
	steps = append(steps, &PersistExpensesStep{Expenses: in.expenses})
	return NewPipeline(steps...)
}

// Ingest fetches req.SourceURI and stores its transactions as expenses.
func (in *Ingestor) Ingest(ctx context.Context, req Request) (*Result, error) {
	if in.storage == nil {
		return nil, fmt.Errorf("Ingest: no storage configured")
	}

	log := in.log.With().Str("user_id", req.UserID).Str("source_uri", req.SourceURI).Logger()
	ctx = logger.WithContext(ctx, log)

	state := &PipelineState{
		UserID:     req.UserID,
		SourceURI:  req.SourceURI,
		DebitOnly:  req.DebitOnly,
		Categories: req.Categories,
	}

	if in.runs != nil {
		runID, err := in.runs.StartParsingRun(ctx, req.UserID, req.SourceURI)
		if err != nil {
			return nil, fmt.Errorf("Ingest: start parsing run: %w", err)
		}
		state.RunID = runID
	}

	if err := in.steps().Execute(ctx, state); err != nil {
		if in.runs != nil {
			in.runs.MarkParsingRunFailed(ctx, state.RunID, err)
		}
		log.Error().Err(err).Str("parsing_run_id", state.RunID).Msg("Statement ingestion failed")
		return nil, fmt.Errorf("Ingest: %w", err)
	}

	if in.runs != nil {
		// expenses are already stored; a retry would duplicate them
		if err := in.runs.MarkParsingRunSucceeded(ctx, state.RunID, len(state.Transactions)); err != nil {
			log.Error().Err(err).Str("parsing_run_id", state.RunID).Msg("Failed to mark parsing run succeeded")
		}
	}

	log.Info().
		Str("parsing_run_id", state.RunID).
		Int("transactions", len(state.Transactions)).
		Int("inserted", state.Inserted).
		Msg("Statement ingested")

	return resultOf(state), nil
}

// Preview extracts, parses and categorizes doc without storing anything.
func (in *Ingestor) Preview(ctx context.Context, doc extract.Document, debitOnly bool, categories []string) (*Result, error) {
	state := &PipelineState{
		Document:   doc,
		DebitOnly:  debitOnly,
		Categories: categories,
	}
	p := NewPipeline(
		&ExtractTextStep{Extractor: in.extractor},
		&ParseTransactionsStep{},
		&CategorizeTransactionsStep{},
	)
	if err := p.Execute(ctx, state); err != nil {
		return nil, fmt.Errorf("Preview: %w", err)
	}
	return resultOf(state), nil
}

// PreviewText parses already extracted text.
func (in *Ingestor) PreviewText(text string, debitOnly bool, categories []string) *Result {
	state := &PipelineState{RawText: text, DebitOnly: debitOnly, Categories: categories}
	_ = (&ParseTransactionsStep{}).Execute(context.Background(), state)
	_ = (&CategorizeTransactionsStep{}).Execute(context.Background(), state)
	return resultOf(state)
}

// HandleJob is a jobs.JobHandler for ingestion jobs.
func (in *Ingestor) HandleJob(ctx context.Context, job jobs.Job) error {
	ingestJob, ok := job.(*jobs.IngestStatementJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %T", job)
	}

	res, err := in.Ingest(ctx, Request{
		UserID:     ingestJob.UserID,
		SourceURI:  ingestJob.SourceURI,
		DebitOnly:  ingestJob.DebitOnly,
		Categories: ingestJob.Categories,
	})
	if err != nil {
		return err
	}
	ingestJob.RunID = res.RunID
	ingestJob.Inserted = res.Inserted
	return nil
}

func resultOf(state *PipelineState) *Result {
	txs := state.Transactions
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return &Result{
		RunID:        state.RunID,
		Document:     state.Document.Name,
		RawText:      state.RawText,
		Transactions: txs,
		Inserted:     state.Inserted,
		Warnings:     state.Warnings,
	}
}
