// Package bootstrap wires the shared services of the binaries from a
// Config. Optional integrations are skipped with a warning when they are not
// configured.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dvloznov/moneyflow/internal/config"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/gcs"
	infraBQ "github.com/dvloznov/moneyflow/internal/infra/bigquery"
	"github.com/dvloznov/moneyflow/internal/mail"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/dvloznov/moneyflow/internal/pipeline"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/dvloznov/moneyflow/internal/store/inmemory"
	"github.com/rs/zerolog"
)

// Services holds everything the binaries share. Storage and Archive are nil
// when not configured.
type Services struct {
	Store    *store.Store
	Notifier *notify.Notifier
	Ingestor *pipeline.Ingestor
	Storage  *gcs.Storage
	Archive  *infraBQ.Archive

	closers []func() error
	log     zerolog.Logger
}

// OpenStore connects to Postgres, or falls back to the in-memory store when
// DATABASE_URL is unset.
func OpenStore(cfg config.Config, log zerolog.Logger) (*store.Store, func() error, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set - using in-memory store, data is lost on restart")
		return inmemory.New(cfg.RetryFailed), func() error { return nil }, nil
	}

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("OpenStore: %w", err)
	}
	return store.NewPostgres(db, cfg.RetryFailed), sqlDB.Close, nil
}

// NewNotifier builds the notifier over st with the configured mailer.
func NewNotifier(cfg config.Config, st *store.Store, log zerolog.Logger) (*notify.Notifier, error) {
	mailer, err := mail.New(cfg.SMTP, log)
	if err != nil {
		return nil, fmt.Errorf("NewNotifier: %w", err)
	}
	return notify.New(st.Events, mailer, log,
		notify.WithSendTimeout(cfg.SMTP.Timeout),
		notify.WithContributions(st.Goals),
	), nil
}

// New wires store, notifier, object storage, archive and the ingestion
// pipeline. Close releases whatever was opened.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Services, error) {
	s := &Services{log: log}

	st, closeStore, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	s.Store = st
	s.closers = append(s.closers, closeStore)

	if s.Notifier, err = NewNotifier(cfg, st, log); err != nil {
		s.Close()
		return nil, err
	}

	var opts []pipeline.Option
	var storage pipeline.StorageService

	if cfg.GCSBucket != "" {
		gs, err := gcs.NewStorage(ctx, cfg.GCSBucket)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Storage = gs
		storage = gs
		s.closers = append(s.closers, gs.Close)
	} else {
		log.Warn().Msg("No GCS bucket configured - statement uploads and ingestion are disabled")
	}

	if cfg.BigQueryProject != "" {
		archive, err := infraBQ.NewArchive(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Archive = archive
		s.closers = append(s.closers, archive.Close)
		opts = append(opts, pipeline.WithArchive(archive), pipeline.WithRunTracker(archive))
	} else {
		log.Warn().Msg("BIGQUERY_PROJECT not set - parsing runs are not archived")
	}

	s.Ingestor = pipeline.NewIngestor(storage, NewExtractor(ctx, cfg, log), st.Expenses, log, opts...)
	return s, nil
}

// NewExtractor returns the extraction chain, with Gemini OCR when a client
// can be created from the environment.
func NewExtractor(ctx context.Context, cfg config.Config, log zerolog.Logger) *extract.Chain {
	var ocr extract.Extractor
	gemini, err := extract.NewGeminiOCR(ctx, cfg.GeminiModel)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini OCR unavailable - scanned statements yield no text")
	} else {
		ocr = gemini
	}
	return extract.NewChain(ocr, log)
}

// Close releases the opened clients in reverse order.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Error().Err(err).Msg("Failed to close resource")
		}
	}
	s.closers = nil
}
