package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/api"
	"github.com/dvloznov/moneyflow/internal/api/handlers"
	"github.com/dvloznov/moneyflow/internal/bootstrap"
	"github.com/dvloznov/moneyflow/internal/config"
	"github.com/dvloznov/moneyflow/internal/jobs/inmemory"
	"github.com/dvloznov/moneyflow/internal/logger"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Component: "api"})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid APP_TIMEZONE")
	}

	ctx := context.Background()

	services, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, jobStore,
		inmemory.WithWorkers(cfg.QueueWorkers),
		inmemory.WithLogger(log.With().Str("component", "jobs").Logger()),
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.QueueWorkers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, services.Ingestor.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	today := func() civil.Date { return civil.DateOf(time.Now().In(loc)) }

	var uploader handlers.Uploader
	if services.Storage != nil {
		uploader = services.Storage
	}

	router := api.NewRouter(api.Handlers{
		Statements:    handlers.NewStatementsHandler(services.Ingestor, uploader, jobQueue, jobStore, log),
		Jobs:          handlers.NewJobsHandler(jobStore, log),
		Goals:         handlers.NewGoalsHandler(services.Store.Users, services.Store.Goals, services.Notifier, today, log),
		Funds:         handlers.NewFundsHandler(services.Store.Users, services.Store.Funds, services.Notifier, today, log),
		Notifications: handlers.NewNotificationsHandler(services.Store.Events, log),
		Profile:       handlers.NewProfileHandler(services.Store.Users, log),
		Expenses:      handlers.NewExpensesHandler(services.Store.Expenses, log),
	}, log)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("timezone", loc.String()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
