package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/moneyflow/internal/config"
	infraBQ "github.com/dvloznov/moneyflow/internal/infra/bigquery"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/rs/zerolog"
)

// step is one schema bootstrap action.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// options are the resolved command-line settings.
type options struct {
	databaseURL string
	bigQuery    bool
	projectID   string
	datasetID   string
}

func (o options) validate() error {
	if o.databaseURL == "" && !o.bigQuery {
		return fmt.Errorf("nothing to migrate: set DATABASE_URL or pass -bigquery")
	}
	if o.bigQuery && o.projectID == "" {
		return fmt.Errorf("-bigquery requires -project or BIGQUERY_PROJECT")
	}
	return nil
}

func plan(o options, log zerolog.Logger) []step {
	var steps []step
	if o.databaseURL != "" {
		steps = append(steps, step{name: "postgres", run: func(ctx context.Context) error {
			db, err := store.Open(o.databaseURL, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return store.Migrate(db.WithContext(ctx))
		}})
	}
	if o.bigQuery {
		steps = append(steps, step{name: "bigquery", run: func(ctx context.Context) error {
			archive, err := infraBQ.NewArchive(ctx, o.projectID, o.datasetID)
			if err != nil {
				return err
			}
			defer archive.Close()
			return archive.EnsureTables(ctx)
		}})
	}
	return steps
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	var o options
	flag.StringVar(&o.databaseURL, "database-url", cfg.DatabaseURL, "Postgres DSN (or set DATABASE_URL)")
	flag.BoolVar(&o.bigQuery, "bigquery", false, "Also create the BigQuery archive dataset and tables")
	flag.StringVar(&o.projectID, "project", cfg.BigQueryProject, "GCP project ID (or set BIGQUERY_PROJECT)")
	flag.StringVar(&o.datasetID, "dataset", cfg.BigQueryDataset, "BigQuery dataset ID")
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Component: "migrate"})

	if err := o.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid flags")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, s := range plan(o, log) {
		start := time.Now()
		log.Info().Str("step", s.name).Msg("Migrating")
		if err := s.run(ctx); err != nil {
			log.Fatal().Err(err).Str("step", s.name).Msg("Migration failed")
		}
		log.Info().Str("step", s.name).Dur("duration", time.Since(start)).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
}
