package pipeline_test

import (
	"context"

	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/extract"
)

// MockStorageService is a mock implementation of StorageService for testing.
type MockStorageService struct {
	FetchFunc           func(ctx context.Context, uri string) ([]byte, error)
	ExtractFilenameFunc func(uri string) string
}

func (m *MockStorageService) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return []byte("mock pdf data"), nil
}

func (m *MockStorageService) ExtractFilename(uri string) string {
	if m.ExtractFilenameFunc != nil {
		return m.ExtractFilenameFunc(uri)
	}
	return "mock-file.pdf"
}

// MockExtractor is a mock implementation of extract.Extractor for testing.
type MockExtractor struct {
	ExtractTextFunc func(ctx context.Context, doc extract.Document) (string, error)
}

func (m *MockExtractor) ExtractText(ctx context.Context, doc extract.Document) (string, error) {
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, doc)
	}
	return "", nil
}

// MockExpenseWriter is a mock implementation of ExpenseWriter for testing.
type MockExpenseWriter struct {
	InsertExpensesFunc func(ctx context.Context, expenses []domain.Expense) (int, error)
	Inserted           []domain.Expense
}

func (m *MockExpenseWriter) InsertExpenses(ctx context.Context, expenses []domain.Expense) (int, error) {
	if m.InsertExpensesFunc != nil {
		return m.InsertExpensesFunc(ctx, expenses)
	}
	m.Inserted = append(m.Inserted, expenses...)
	return len(expenses), nil
}

// MockArchive is a mock implementation of TransactionArchive and RunTracker
// for testing.
type MockArchive struct {
	InsertExtractedTextFunc         func(ctx context.Context, runID, documentName, text string) error
	InsertStatementTransactionsFunc func(ctx context.Context, runID, userID, sourceURI string, txs []domain.Transaction) error
	StartParsingRunFunc             func(ctx context.Context, userID, sourceURI string) (string, error)
	MarkParsingRunSucceededFunc     func(ctx context.Context, runID string, count int) error

	FailedRuns    []string
	SucceededRuns []string
	Archived      int
}

func (m *MockArchive) InsertExtractedText(ctx context.Context, runID, documentName, text string) error {
	if m.InsertExtractedTextFunc != nil {
		return m.InsertExtractedTextFunc(ctx, runID, documentName, text)
	}
	return nil
}

func (m *MockArchive) InsertStatementTransactions(ctx context.Context, runID, userID, sourceURI string, txs []domain.Transaction) error {
	if m.InsertStatementTransactionsFunc != nil {
		return m.InsertStatementTransactionsFunc(ctx, runID, userID, sourceURI, txs)
	}
	m.Archived += len(txs)
	return nil
}

func (m *MockArchive) StartParsingRun(ctx context.Context, userID, sourceURI string) (string, error) {
	if m.StartParsingRunFunc != nil {
		return m.StartParsingRunFunc(ctx, userID, sourceURI)
	}
	return "test-run-id", nil
}

func (m *MockArchive) MarkParsingRunFailed(ctx context.Context, runID string, parseErr error) {
	m.FailedRuns = append(m.FailedRuns, runID)
}

func (m *MockArchive) MarkParsingRunSucceeded(ctx context.Context, runID string, count int) error {
	m.SucceededRuns = append(m.SucceededRuns, runID)
	if m.MarkParsingRunSucceededFunc != nil {
		return m.MarkParsingRunSucceededFunc(ctx, runID, count)
	}
	return nil
}
