// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the binaries share. Zero values for optional
// integrations disable them.
type Config struct {
	Port        string
	DatabaseURL string
	GCSBucket   string

	BigQueryProject string
	BigQueryDataset string

	GeminiModel string

	SMTP SMTP

	Timezone    string
	RetryFailed bool
	LogLevel    string

	QueueWorkers int
	QueueBuffer  int
}

// SMTP configures outgoing mail. An empty Host selects the log mailer.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("Location: %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FromEnv reads the environment, applying defaults for unset variables.
// Malformed numbers, durations and booleans are reported rather than ignored.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	env := reader{lookup: lookup}

	cfg := Config{
		Port:            env.str("PORT", "8080"),
		DatabaseURL:     env.str("DATABASE_URL", ""),
		GCSBucket:       env.str("GCS_BUCKET", ""),
		BigQueryProject: env.str("BIGQUERY_PROJECT", ""),
		BigQueryDataset: env.str("BIGQUERY_DATASET", "finance"),
		GeminiModel:     env.str("GEMINI_MODEL", "gemini-2.5-flash"),
		SMTP: SMTP{
			Host:     env.str("SMTP_HOST", ""),
			Port:     env.integer("SMTP_PORT", 587),
			Username: env.str("SMTP_USERNAME", ""),
			Password: env.str("SMTP_PASSWORD", ""),
			From:     env.str("SMTP_FROM", ""),
			Timeout:  env.duration("SMTP_TIMEOUT", 20*time.Second),
		},
		Timezone:     env.str("APP_TIMEZONE", "Asia/Kolkata"),
		RetryFailed:  env.boolean("NOTIFY_RETRY_FAILED", false),
		LogLevel:     env.str("LOG_LEVEL", "info"),
		QueueWorkers: env.integer("QUEUE_WORKERS", 5),
		QueueBuffer:  env.integer("QUEUE_BUFFER", 100),
	}
	if env.err != nil {
		return Config{}, fmt.Errorf("FromEnv: %w", env.err)
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.QueueWorkers < 1 {
		return Config{}, fmt.Errorf("FromEnv: QUEUE_WORKERS must be positive, got %d", cfg.QueueWorkers)
	}
	if cfg.QueueBuffer < 0 {
		return Config{}, fmt.Errorf("FromEnv: QUEUE_BUFFER must not be negative, got %d", cfg.QueueBuffer)
	}
	return cfg, nil
}

// reader keeps the first parse error so FromEnv can report it once.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) str(key, def string) string {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return def
	}
	return v
}

func (r *reader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s=%q: %w", key, value, err)
	}
}
