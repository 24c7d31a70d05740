// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/dvloznov/moneyflow/internal/pipeline"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/dvloznov/moneyflow/internal/validate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxJSONBody limits request bodies other than file uploads.
const maxJSONBody = 1 << 20

// Clock returns the current calendar day in the application's timezone.
type Clock func() civil.Date

// Notifications is the part of the notifier the handlers trigger.
type Notifications interface {
	GoalContribution(ctx context.Context, goal domain.Goal, added decimal.Decimal, today civil.Date)
	FundCreated(ctx context.Context, fund domain.Fund, today civil.Date) notify.Outcome
	FundContribution(ctx context.Context, fund domain.Fund, added decimal.Decimal, today civil.Date) notify.Outcome
}

// Previewer parses statements without storing anything.
type Previewer interface {
	Preview(ctx context.Context, doc extract.Document, debitOnly bool, categories []string) (*pipeline.Result, error)
	PreviewText(text string, debitOnly bool, categories []string) *pipeline.Result
}

// Uploader stores statement files in object storage.
type Uploader interface {
	Upload(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error)
}

// decodeJSON reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return checkInput(w, dst)
}

func checkInput(w http.ResponseWriter, in interface{}) bool {
	err := validate.Struct(in)
	if err == nil {
		return true
	}
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		middleware.WriteFieldErrors(w, verr.Fields)
		return false
	}
	middleware.WriteError(w, http.StatusBadRequest, err.Error())
	return false
}

// pathID returns a UUID route variable, or writes a 404.
func pathID(w http.ResponseWriter, vars map[string]string, name string) (string, bool) {
	id := vars[name]
	if _, err := uuid.Parse(id); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return "", false
	}
	return id, true
}

// ownerOf loads the caller's profile. Goals and funds need one for the
// notification address.
func ownerOf(w http.ResponseWriter, r *http.Request, users store.Users, log zerolog.Logger) (domain.Owner, bool) {
	owner, err := users.GetUser(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusConflict, "Create a profile with PUT /api/profile first")
		return domain.Owner{}, false
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return domain.Owner{}, false
	}
	return owner, true
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
