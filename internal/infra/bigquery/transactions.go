package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

type StatementTransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	ParsingRunID  string `bigquery:"parsing_run_id"` // REQUIRED
	SourceURI     string `bigquery:"source_uri"`

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount       *big.Rat `bigquery:"amount"`                 // REQUIRED NUMERIC
	BalanceAfter *big.Rat `bigquery:"balance_after,nullable"` // NULLABLE NUMERIC

	Direction    string              `bigquery:"direction"`
	Description  string              `bigquery:"description"`
	CategoryName bigquery.NullString `bigquery:"category_name"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// Transaction converts the row back into a parser result.
func (r *StatementTransactionRow) Transaction() domain.Transaction {
	tx := domain.Transaction{
		Date:        r.TransactionDate,
		Description: r.Description,
		Direction:   domain.Direction(r.Direction),
		Category:    r.CategoryName.StringVal,
	}
	if r.Amount != nil {
		tx.Amount = decimal.NewFromBigRat(r.Amount, 2).StringFixed(2)
	}
	if r.BalanceAfter != nil {
		b := decimal.NewFromBigRat(r.BalanceAfter, 2).StringFixed(2)
		tx.Balance = &b
	}
	return tx
}

// rowFromTransaction maps one parser result to an archive row.
func rowFromTransaction(runID, userID, sourceURI string, tx domain.Transaction, now time.Time) (*StatementTransactionRow, error) {
	amount, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", tx.Amount, err)
	}

	row := &StatementTransactionRow{
		TransactionID:   uuid.NewString(),
		UserID:          userID,
		ParsingRunID:    runID,
		SourceURI:       sourceURI,
		TransactionDate: tx.Date,
		Amount:          amount.Rat(),
		Direction:       string(tx.Direction),
		Description:     tx.Description,
		CreatedTS:       now,
	}
	if tx.Balance != nil {
		balance, err := decimal.NewFromString(*tx.Balance)
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", *tx.Balance, err)
		}
		row.BalanceAfter = balance.Rat()
	}
	if tx.Category != "" {
		row.CategoryName = bigquery.NullString{StringVal: tx.Category, Valid: true}
	}
	return row, nil
}

// InsertStatementTransactions streams the accepted transactions of a run.
func (a *Archive) InsertStatementTransactions(ctx context.Context, runID, userID, sourceURI string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*StatementTransactionRow, 0, len(txs))
	for _, tx := range txs {
		row, err := rowFromTransaction(runID, userID, sourceURI, tx, now)
		if err != nil {
			return fmt.Errorf("InsertStatementTransactions: %w", err)
		}
		rows = append(rows, row)
	}

	inserter := a.client.Dataset(a.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertStatementTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryStatementTransactions returns a user's archived transactions dated
// within [from, to]. Only rows from successful parsing runs are included.
func (a *Archive) QueryStatementTransactions(ctx context.Context, userID string, from, to civil.Date) ([]*StatementTransactionRow, error) {
	q := a.client.Query(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.parsing_run_id,
			t.source_uri,
			t.transaction_date,
			t.amount,
			t.balance_after,
			t.direction,
			t.description,
			t.category_name,
			t.created_ts
		FROM ` + a.table(transactionsTable) + ` t
		INNER JOIN ` + a.table(parsingRunsTable) + ` pr
		  ON t.parsing_run_id = pr.parsing_run_id
		WHERE t.user_id = @user_id
		  AND t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND pr.status = @status
		ORDER BY t.transaction_date, t.created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: from},
		{Name: "end_date", Value: to},
		{Name: "status", Value: RunStatusSuccess},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryStatementTransactions: query read: %w", err)
	}

	var rows []*StatementTransactionRow
	for {
		var r StatementTransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryStatementTransactions: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
