package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/dvloznov/moneyflow/internal/validate"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type goalResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	Remaining    decimal.Decimal `json:"remaining"`
	Progress     decimal.Decimal `json:"progress_pct"`
	TargetDate   string          `json:"target_date,omitempty"`
	DaysLeft     *int            `json:"days_left,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newGoalResponse(goal domain.Goal, stats notify.Stats) goalResponse {
	resp := goalResponse{
		ID:           goal.ID,
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount,
		SavedAmount:  goal.SavedAmount,
		Remaining:    stats.Remaining,
		Progress:     stats.Percent,
		DaysLeft:     stats.DaysLeft,
		Status:       stats.Status,
		CreatedAt:    goal.CreatedAt,
	}
	if goal.TargetDate != nil {
		resp.TargetDate = goal.TargetDate.String()
	}
	return resp
}

// GoalsHandler handles savings goal endpoints.
type GoalsHandler struct {
	users    store.Users
	goals    store.Goals
	notifier Notifications
	today    Clock
	log      zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(users store.Users, goals store.Goals, notifier Notifications, today Clock, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{users: users, goals: goals, notifier: notifier, today: today, log: log}
}

// ListGoals handles GET /api/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.ListUserGoals(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list goals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}

	today := h.today()
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalResponse(g, notify.ComputeStats(g, today)))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": out,
		"count": len(out),
	})
}

// CreateGoal handles POST /api/goals. A starting balance is announced like
// any other contribution.
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var in validate.GoalInput
	if !decodeJSON(w, r, &in) {
		return
	}
	owner, ok := ownerOf(w, r, h.users, h.log)
	if !ok {
		return
	}

	ctx := r.Context()
	today := h.today()
	goal, err := h.goals.CreateGoal(ctx, in.Goal(owner), today)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}

	h.log.Info().Str("goal_id", goal.ID).Str("user_id", owner.UserID).Msg("Goal created")
	h.notifier.GoalContribution(ctx, goal, goal.SavedAmount, today)

	middleware.WriteJSON(w, http.StatusCreated, newGoalResponse(goal, notify.ComputeStats(goal, today)))
}

// exceedsTargetFields is the 400 body for a contribution past the target.
var exceedsTargetFields = map[string]string{"amount": "saved amount cannot exceed target amount"}

// AddContribution handles POST /api/goals/{id}/contributions
func (h *GoalsHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, mux.Vars(r), "id")
	if !ok {
		return
	}
	var in validate.ContributionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := r.Context()
	today := h.today()
	goal, err := h.goals.AddContribution(ctx, middleware.UserID(ctx), goalID, in.Amount, in.Day(today))
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if errors.Is(err, store.ErrExceedsTarget) {
		middleware.WriteFieldErrors(w, exceedsTargetFields)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("goal_id", goalID).Msg("Failed to add contribution")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add contribution")
		return
	}

	h.notifier.GoalContribution(ctx, goal, in.Amount, today)

	middleware.WriteJSON(w, http.StatusOK, newGoalResponse(goal, notify.ComputeStats(goal, today)))
}

type fundResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	SavedAmount        decimal.Decimal `json:"saved_amount"`
	Interval           domain.Interval `json:"interval"`
	LastContributionAt *time.Time      `json:"last_contribution_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	Notification       string          `json:"notification,omitempty"`
}

func newFundResponse(fund domain.Fund) fundResponse {
	return fundResponse{
		ID:                 fund.ID,
		Name:               fund.Name,
		TargetAmount:       fund.TargetAmount,
		SavedAmount:        fund.SavedAmount,
		Interval:           fund.Interval,
		LastContributionAt: fund.LastContributionAt,
		CreatedAt:          fund.CreatedAt,
	}
}

// FundsHandler handles emergency fund endpoints.
type FundsHandler struct {
	users    store.Users
	funds    store.Funds
	notifier Notifications
	today    Clock
	log      zerolog.Logger
}

// NewFundsHandler creates a new funds handler.
func NewFundsHandler(users store.Users, funds store.Funds, notifier Notifications, today Clock, log zerolog.Logger) *FundsHandler {
	return &FundsHandler{users: users, funds: funds, notifier: notifier, today: today, log: log}
}

// ListFunds handles GET /api/funds
func (h *FundsHandler) ListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.funds.ListUserFunds(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list funds")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list funds")
		return
	}

	out := make([]fundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, newFundResponse(f))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"funds": out,
		"count": len(out),
	})
}

// CreateFund handles POST /api/funds
func (h *FundsHandler) CreateFund(w http.ResponseWriter, r *http.Request) {
	var in validate.FundInput
	if !decodeJSON(w, r, &in) {
		return
	}
	owner, ok := ownerOf(w, r, h.users, h.log)
	if !ok {
		return
	}

	ctx := r.Context()
	fund, err := h.funds.CreateFund(ctx, in.Fund(owner))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create fund")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create fund")
		return
	}

	h.log.Info().Str("fund_id", fund.ID).Str("user_id", owner.UserID).Msg("Emergency fund created")
	outcome := h.notifier.FundCreated(ctx, fund, h.today())

	resp := newFundResponse(fund)
	resp.Notification = outcome.String()
	middleware.WriteJSON(w, http.StatusCreated, resp)
}

// AddContribution handles POST /api/funds/{id}/contributions
func (h *FundsHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	fundID, ok := pathID(w, mux.Vars(r), "id")
	if !ok {
		return
	}
	var in validate.ContributionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := r.Context()
	fund, err := h.funds.AddContribution(ctx, middleware.UserID(ctx), fundID, in.Amount, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Fund not found")
		return
	}
	if errors.Is(err, store.ErrExceedsTarget) {
		middleware.WriteFieldErrors(w, exceedsTargetFields)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("fund_id", fundID).Msg("Failed to add contribution")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add contribution")
		return
	}

	outcome := h.notifier.FundContribution(ctx, fund, in.Amount, h.today())

	resp := newFundResponse(fund)
	resp.Notification = outcome.String()
	middleware.WriteJSON(w, http.StatusOK, resp)
}
