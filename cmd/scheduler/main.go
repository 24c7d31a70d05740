package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/bootstrap"
	"github.com/dvloznov/moneyflow/internal/config"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type taskFunc func(ctx context.Context, today civil.Date) (notify.RunReport, error)

// task is one scheduled check and its cron spec in the app timezone.
type task struct {
	name string
	spec string
	run  taskFunc
}

func tasksFor(s *notify.Scheduler) []task {
	return []task{
		{name: "deadline", spec: "0 9 * * *", run: s.DeadlineReminders},
		{name: "monthend", spec: "0 21 28-31 * *", run: s.MonthEndNoContribution},
		{name: "emergency", spec: "30 9 * * *", run: s.EmergencyIntervalCheck},
	}
}

func findTask(tasks []task, name string) (task, error) {
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.name == name {
			return t, nil
		}
		names = append(names, t.name)
	}
	sort.Strings(names)
	return task{}, fmt.Errorf("unknown task %q (available: %v)", name, names)
}

// parseDay reads -today; empty means the scheduler's current day.
func parseDay(s string, fallback civil.Date) (civil.Date, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid -today %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func main() {
	runTask := flag.String("run", "", "run one task (deadline, monthend, emergency) once and exit")
	todayFlag := flag.String("today", "", "override the current day for -run (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Component: "scheduler"})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid APP_TIMEZONE")
	}

	st, closeStore, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer closeStore()

	notifier, err := bootstrap.NewNotifier(cfg, st, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create notifier")
	}
	scheduler := notify.NewScheduler(notifier, st.Goals, st.Funds, st.Goals, loc, log)
	tasks := tasksFor(scheduler)

	if *runTask != "" {
		t, err := findTask(tasks, *runTask)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot run task")
		}
		day, err := parseDay(*todayFlag, scheduler.Today())
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot run task")
		}
		report, err := t.run(context.Background(), day)
		if err != nil {
			log.Fatal().Err(err).Str("task", t.name).Msg("Task failed")
		}
		fmt.Printf("%s %s: checked=%d sent=%d skipped=%d failed=%d %s\n",
			report.Task, report.Day, report.Checked, report.Sent, report.Skipped, report.Failed, report.Note)
		return
	}

	clog := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, t := range tasks {
		t := t
		_, err := c.AddFunc(t.spec, func() {
			if _, err := t.run(ctx, scheduler.Today()); err != nil {
				log.Error().Err(err).Str("task", t.name).Msg("Scheduled task failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("task", t.name).Str("spec", t.spec).Msg("Invalid cron spec")
		}
		log.Info().Str("task", t.name).Str("spec", t.spec).Msg("Task scheduled")
	}

	c.Start()
	log.Info().Str("timezone", loc.String()).Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	cancel()
	log.Info().Msg("Scheduler exited")
}
