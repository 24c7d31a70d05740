// Package validate checks API input before it reaches the store or the
// notifier.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// GoalInput is the body of a create-goal request.
type GoalInput struct {
	Name         string          `json:"name" validate:"required,max=120"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"gt=0"`
	SavedAmount  decimal.Decimal `json:"saved_amount" validate:"gte=0"`
	TargetDate   string          `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// Goal converts a validated input.
func (in GoalInput) Goal(owner domain.Owner) domain.Goal {
	goal := domain.Goal{
		Owner:        owner,
		Name:         strings.TrimSpace(in.Name),
		TargetAmount: in.TargetAmount,
		SavedAmount:  in.SavedAmount,
	}
	if d, err := civil.ParseDate(in.TargetDate); err == nil {
		goal.TargetDate = &d
	}
	return goal
}

// FundInput is the body of a create-fund request.
type FundInput struct {
	Name         string          `json:"name" validate:"required,max=120"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"gt=0"`
	SavedAmount  decimal.Decimal `json:"saved_amount" validate:"gte=0"`
	Interval     string          `json:"interval" validate:"required,interval"`
}

// Fund converts a validated input.
func (in FundInput) Fund(owner domain.Owner) domain.Fund {
	return domain.Fund{
		Owner:        owner,
		Name:         strings.TrimSpace(in.Name),
		TargetAmount: in.TargetAmount,
		SavedAmount:  in.SavedAmount,
		Interval:     domain.ParseInterval(in.Interval),
	}
}

// ContributionInput is the body of an add-contribution request. Date
// defaults to today.
type ContributionInput struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Date   string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Day returns the contribution date, or today when none was given.
func (in ContributionInput) Day(today civil.Date) civil.Date {
	if d, err := civil.ParseDate(in.Date); err == nil {
		return d
	}
	return today
}

// StatementIngestInput is the body of an ingest request for an already
// uploaded statement.
type StatementIngestInput struct {
	GCSURI     string   `json:"gcs_uri" validate:"required,startswith=gs://"`
	DebitOnly  *bool    `json:"debit_only"`
	Categories []string `json:"categories" validate:"omitempty,max=50,dive,required,max=60"`
}

// DebitOnlyOrDefault treats a missing flag as true.
func (in StatementIngestInput) DebitOnlyOrDefault() bool {
	return in.DebitOnly == nil || *in.DebitOnly
}

// PreviewTextInput is the JSON body of a statement preview.
type PreviewTextInput struct {
	Text       string   `json:"text" validate:"required"`
	DebitOnly  *bool    `json:"debit_only"`
	Categories []string `json:"categories" validate:"omitempty,max=50,dive,required,max=60"`
}

// DebitOnlyOrDefault treats a missing flag as true.
func (in PreviewTextInput) DebitOnlyOrDefault() bool {
	return in.DebitOnly == nil || *in.DebitOnly
}

// CategorizeInput asks for the category of one description.
type CategorizeInput struct {
	Description string   `json:"description" validate:"required,max=500"`
	Categories  []string `json:"categories" validate:"omitempty,max=50,dive,required,max=60"`
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

// ValidationError lists the offending fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// numeric tags compare decimals through their float value
	val.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = val.RegisterValidation("interval", func(fl validator.FieldLevel) bool {
		return domain.Interval(fl.Field().String()).Valid()
	})

	val.RegisterStructValidation(savedWithinTarget, GoalInput{}, FundInput{})
	return val
}

func savedWithinTarget(sl validator.StructLevel) {
	var saved, target decimal.Decimal
	switch in := sl.Current().Interface().(type) {
	case GoalInput:
		saved, target = in.SavedAmount, in.TargetAmount
	case FundInput:
		saved, target = in.SavedAmount, in.TargetAmount
	default:
		return
	}
	if target.IsPositive() && saved.GreaterThan(target) {
		sl.ReportError(saved, "saved_amount", "SavedAmount", "ltetarget", "")
	}
}

// Struct validates s and returns a *ValidationError describing every
// failing field, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("Struct: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "startswith":
		return "must start with " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "interval":
		return "must be one of weekly, monthly, quarterly, halfyearly, yearly"
	case "ltetarget":
		return "must not exceed target_amount"
	default:
		return "is invalid"
	}
}
