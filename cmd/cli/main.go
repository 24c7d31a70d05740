package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/bootstrap"
	"github.com/dvloznov/moneyflow/internal/config"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/gcs"
	infraBQ "github.com/dvloznov/moneyflow/internal/infra/bigquery"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/dvloznov/moneyflow/internal/pipeline"
	"github.com/dvloznov/moneyflow/internal/statement"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	// stdout carries command output, logs go to stderr
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Component: "cli", Output: os.Stderr})

	switch os.Args[1] {
	case "parse":
		runParse(cfg, log)
	case "categorize":
		runCategorize()
	case "upload":
		runUpload(cfg, log)
	case "ingest":
		runIngest(cfg, log)
	case "remind":
		runRemind(cfg, log)
	case "history":
		runHistory(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Moneyflow CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse       Parse a local statement file and print its transactions as JSON")
	fmt.Println("  categorize  Print the category of a transaction description")
	fmt.Println("  upload      Upload a statement file to GCS")
	fmt.Println("  ingest      Ingest a statement from GCS into a user's expenses")
	fmt.Println("  remind      Run one scheduled notification check")
	fmt.Println("  history     List archived statement transactions of a user")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}

func runParse(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a statement (PDF, image, text, OFX/QFX)")
	all := fs.Bool("all", false, "Keep credit lines too")
	categories := fs.String("categories", "", "Comma separated categories to choose from")
	ocr := fs.Bool("ocr", false, "Allow Gemini OCR for scanned documents")
	rawText := fs.Bool("raw", false, "Include the extracted text in the output")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli parse -file PATH [-all] [-categories A,B] [-ocr]")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	extractor := extract.NewChain(nil, log)
	if *ocr {
		extractor = bootstrap.NewExtractor(ctx, cfg, log)
	}
	ingestor := pipeline.NewIngestor(nil, extractor, nil, log)

	doc := extract.Document{Name: filepath.Base(*filePath), Data: data}
	result, err := ingestor.Preview(ctx, doc, !*all, splitList(*categories))
	if err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}
	if !*rawText {
		result.RawText = ""
	}
	printJSON(result)
}

func runCategorize() {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	description := fs.String("description", "", "Transaction description")
	categories := fs.String("categories", "", "Comma separated categories to choose from")
	fs.Parse(os.Args[2:])

	if *description == "" {
		fmt.Fprintln(os.Stderr, "Usage: cli categorize -description TEXT [-categories A,B]")
		os.Exit(1)
	}
	fmt.Println(statement.Categorize(*description, splitList(*categories)))
}

func runUpload(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucket := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (or set GCS_BUCKET env)")
	userID := fs.String("user", "", "Owner of the statement")
	objectName := fs.String("object", "", "GCS object name (defaults to statements/<user>/<yyyy>/<mm>/<uuid>-<filename>)")
	filePath := fs.String("file", "", "Path to local statement file")
	fs.Parse(os.Args[2:])

	if *bucket == "" || *filePath == "" || (*userID == "" && *objectName == "") {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH (-user ID | -object NAME)")
	}
	if *objectName == "" {
		*objectName = gcs.ObjectName(*userID, *filePath, time.Now())
	}

	ctx := logger.WithContext(context.Background(), log)

	storage, err := gcs.NewStorage(ctx, *bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucket).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	uri, err := storage.UploadFile(ctx, *objectName, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
	fmt.Println(uri)
}

func runIngest(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the statement")
	userID := fs.String("user", "", "Owner of the resulting expenses")
	all := fs.Bool("all", false, "Keep credit lines too")
	categories := fs.String("categories", "", "Comma separated categories to choose from")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" || *userID == "" {
		log.Fatal().Msg("Usage: cli ingest -gcs-uri URI -user ID [-all] [-categories A,B]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	services, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Close()

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	result, err := services.Ingestor.Ingest(ctx, pipeline.Request{
		UserID:     *userID,
		SourceURI:  *gcsURI,
		DebitOnly:  !*all,
		Categories: splitList(*categories),
	})
	if err != nil {
		log.Error().Err(err).Msg("Ingestion failed")
		services.Close()
		os.Exit(1)
	}

	fmt.Printf("Ingested %d of %d transactions (run %s).\n", result.Inserted, len(result.Transactions), result.RunID)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func runRemind(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("remind", flag.ExitOnError)
	task := fs.String("task", "", "deadline, monthend or emergency")
	today := fs.String("today", "", "Day to evaluate (YYYY-MM-DD), defaults to today in APP_TIMEZONE")
	fs.Parse(os.Args[2:])

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

	day := scheduler.Today()
	if *today != "" {
		if day, err = civil.ParseDate(*today); err != nil {
			log.Fatal().Err(err).Msg("Invalid -today")
		}
	}

	ctx := logger.WithContext(context.Background(), log)

	var report notify.RunReport
	switch *task {
	case "deadline":
		report, err = scheduler.DeadlineReminders(ctx, day)
	case "monthend":
		report, err = scheduler.MonthEndNoContribution(ctx, day)
	case "emergency":
		report, err = scheduler.EmergencyIntervalCheck(ctx, day)
	default:
		log.Fatal().Msg("Usage: cli remind -task deadline|monthend|emergency [-today YYYY-MM-DD]")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Check failed")
	}
	printJSON(report)
}

func runHistory(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.String("user", "", "User whose transactions to list")
	from := fs.String("from", "", "First day (YYYY-MM-DD), defaults to one year ago")
	to := fs.String("to", "", "Last day (YYYY-MM-DD), defaults to today")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Usage: cli history -user ID [-from YYYY-MM-DD] [-to YYYY-MM-DD]")
	}
	if cfg.BigQueryProject == "" {
		log.Fatal().Msg("BIGQUERY_PROJECT is required")
	}

	now := time.Now()
	end := civil.DateOf(now)
	start := civil.DateOf(now.AddDate(-1, 0, 0))
	var err error
	if *from != "" {
		if start, err = civil.ParseDate(*from); err != nil {
			log.Fatal().Err(err).Msg("Invalid -from")
		}
	}
	if *to != "" {
		if end, err = civil.ParseDate(*to); err != nil {
			log.Fatal().Err(err).Msg("Invalid -to")
		}
	}

	ctx := logger.WithContext(context.Background(), log)

	archive, err := infraBQ.NewArchive(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archive client")
	}
	defer archive.Close()

	rows, err := archive.QueryStatementTransactions(ctx, *userID, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query transactions")
	}

	fmt.Printf("\n=== Transactions %s to %s (%d) ===\n", start, end, len(rows))
	for i, row := range rows {
		tx := row.Transaction()
		fmt.Printf("\n%d. %s\n", i+1, tx.Description)
		fmt.Printf("   Date:      %s\n", tx.Date)
		fmt.Printf("   Amount:    %s %s\n", tx.Amount, tx.Direction)
		if tx.Category != "" {
			fmt.Printf("   Category:  %s\n", tx.Category)
		}
		if tx.Balance != nil {
			fmt.Printf("   Balance:   %s\n", *tx.Balance)
		}
		fmt.Printf("   Source:    %s\n", row.SourceURI)
	}
	fmt.Println()
}
