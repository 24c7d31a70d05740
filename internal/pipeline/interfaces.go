package pipeline

import (
	"context"

	"github.com/dvloznov/moneyflow/internal/domain"
)

// StorageService fetches uploaded statements.
type StorageService interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
	ExtractFilename(uri string) string
}

// ExpenseWriter persists accepted transactions as expenses.
type ExpenseWriter interface {
	InsertExpenses(ctx context.Context, expenses []domain.Expense) (int, error)
}

// TransactionArchive keeps an analytics copy of every parsing run.
type TransactionArchive interface {
	InsertExtractedText(ctx context.Context, runID, documentName, text string) error
	InsertStatementTransactions(ctx context.Context, runID, userID, sourceURI string, txs []domain.Transaction) error
}

// RunTracker records the lifecycle of a parsing run.
type RunTracker interface {
	StartParsingRun(ctx context.Context, userID, sourceURI string) (string, error)
	MarkParsingRunFailed(ctx context.Context, runID string, parseErr error)
	MarkParsingRunSucceeded(ctx context.Context, runID string, count int) error
}
