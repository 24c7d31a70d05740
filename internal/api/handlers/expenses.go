package handlers

import (
	"net/http"

	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type expenseResponse struct {
	ID          string               `json:"id"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Amount      decimal.Decimal      `json:"amount"`
	Date        string               `json:"date"`
	Direction   domain.Direction     `json:"direction"`
	Source      domain.ExpenseSource `json:"source"`
}

// ExpensesHandler lists the expenses stored by statement ingestion.
type ExpensesHandler struct {
	expenses store.Expenses
	log      zerolog.Logger
}

func NewExpensesHandler(expenses store.Expenses, log zerolog.Logger) *ExpensesHandler {
	return &ExpensesHandler{expenses: expenses, log: log}
}

// ListExpenses handles GET /api/expenses, newest first.
func (h *ExpensesHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expenses, err := h.expenses.ListExpenses(ctx, middleware.UserID(ctx), queryInt(r, "limit", 100))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list expenses")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			Description: e.Description,
			Category:    e.Category,
			Amount:      e.Amount,
			Date:        e.Date.String(),
			Direction:   e.Direction,
			Source:      e.Source,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": out,
		"count":    len(out),
	})
}
