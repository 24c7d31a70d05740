package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/dvloznov/moneyflow/internal/statement"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	UserID     string
	SourceURI  string
	RunID      string
	DebitOnly  bool
	Categories []string

	Document     extract.Document
	RawText      string
	Transactions []domain.Transaction
	Inserted     int

	// Warnings collects recoverable problems, such as an unreadable OFX file.
	Warnings []string
}

// FetchDocumentStep downloads the statement unless the state already
// carries its bytes.
type FetchDocumentStep struct {
	Storage StorageService
}

func (s *FetchDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Document.Data) > 0 {
		return nil
	}
	data, err := s.Storage.Fetch(ctx, state.SourceURI)
	if err != nil {
		return fmt.Errorf("FetchDocumentStep: %w", err)
	}
	state.Document = extract.Document{
		Name: s.Storage.ExtractFilename(state.SourceURI),
		Data: data,
	}
	return nil
}

// ExtractTextStep turns the document into raw text. OFX files are parsed
// from their bytes and skip this step.
type ExtractTextStep struct {
	Extractor extract.Extractor
}

func (s *ExtractTextStep) Execute(ctx context.Context, state *PipelineState) error {
	if isOFX(state.Document.Name) {
		return nil
	}
	text, err := s.Extractor.ExtractText(ctx, state.Document)
	if err != nil {
		return fmt.Errorf("ExtractTextStep: %w", err)
	}
	state.RawText = text
	return nil
}

// ParseTransactionsStep runs the statement parser, or the OFX importer for
// .ofx and .qfx files.
type ParseTransactionsStep struct{}

func (s *ParseTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	if !isOFX(state.Document.Name) {
		state.Transactions = statement.ParseTransactions(state.RawText, state.DebitOnly)
		return nil
	}

	txs, err := statement.ParseOFX(bytes.NewReader(state.Document.Data), state.DebitOnly)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("document", state.Document.Name).Msg("OFX import failed")
		state.Warnings = append(state.Warnings, fmt.Sprintf("ofx: %v", err))
		txs = []domain.Transaction{}
	}
	state.Transactions = txs
	return nil
}

// CategorizeTransactionsStep assigns a category to every transaction.
type CategorizeTransactionsStep struct{}

func (s *CategorizeTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	statement.CategorizeAll(state.Transactions, state.Categories)
	return nil
}

// PersistExpensesStep stores the transactions as the user's expenses.
type PersistExpensesStep struct {
	Expenses ExpenseWriter
}

func (s *PersistExpensesStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Transactions) == 0 {
		return nil
	}
	expenses := make([]domain.Expense, 0, len(state.Transactions))
	for _, tx := range state.Transactions {
		expenses = append(expenses, toExpense(state.UserID, tx))
	}
	n, err := s.Expenses.InsertExpenses(ctx, expenses)
	if err != nil {
		return fmt.Errorf("PersistExpensesStep: %w", err)
	}
	state.Inserted = n
	return nil
}

// ArchiveTransactionsStep copies the extracted text and the transactions
// into the analytics archive.
type ArchiveTransactionsStep struct {
	Archive TransactionArchive
}

func (s *ArchiveTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.RawText != "" {
		if err := s.Archive.InsertExtractedText(ctx, state.RunID, state.Document.Name, state.RawText); err != nil {
			return fmt.Errorf("ArchiveTransactionsStep: %w", err)
		}
	}
	if err := s.Archive.InsertStatementTransactions(ctx, state.RunID, state.UserID, state.SourceURI, state.Transactions); err != nil {
		return fmt.Errorf("ArchiveTransactionsStep: %w", err)
	}
	return nil
}

func toExpense(userID string, tx domain.Transaction) domain.Expense {
	return domain.Expense{
		UserID:      userID,
		Description: tx.Description,
		Category:    tx.Category,
		Amount:      tx.AmountValue(),
		Date:        tx.Date,
		Direction:   tx.Direction,
		Source:      domain.SourceStatement,
		RawText:     tx.Description,
	}
}

func isOFX(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
