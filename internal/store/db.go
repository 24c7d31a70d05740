package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to Postgres. sslmode=require is added when the DSN does not
// set an sslmode.
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("Open: empty DSN")
	}
	dsn = withSSLMode(dsn)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(gormWriter{log: log}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Open: connecting to database: %w", err)
	}
	return db, nil
}

// withSSLMode appends sslmode=require to URL and key=value DSNs alike.
func withSSLMode(dsn string) string {
	switch {
	case strings.Contains(dsn, "sslmode"):
		return dsn
	case !strings.Contains(dsn, "://"):
		return dsn + " sslmode=require"
	case strings.Contains(dsn, "?"):
		return dsn + "&sslmode=require"
	default:
		return dsn + "?sslmode=require"
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&SavingsGoal{},
		&SavingsContribution{},
		&EmergencyFund{},
		&EmergencyContribution{},
		&Expense{},
		&NotificationEvent{},
	)
	if err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}

// NewPostgres builds a Store over db. retryFailed lets a failed
// notification be claimed again.
func NewPostgres(db *gorm.DB, retryFailed bool) *Store {
	return &Store{
		Users:    &UserRepository{db: db},
		Goals:    &GoalRepository{db: db},
		Funds:    &FundRepository{db: db},
		Expenses: &ExpenseRepository{db: db},
		Events:   &EventRepository{db: db, retryFailed: retryFailed},
	}
}

// gormWriter routes gorm's logger into zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}
