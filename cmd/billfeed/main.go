package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billfeed/internal"
	"billfeed/internal/config"
	"billfeed/internal/logger"
	"billfeed/internal/notify"
	"billfeed/internal/pipeline"
	"billfeed/internal/source"
	sheetssource "billfeed/internal/source/sheets"
	workbooksource "billfeed/internal/source/workbook"
	"billfeed/internal/storage"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	must(log, err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		date := fs.String("date", "", "target date DD.MM.YYYY (default: today or TARGET_DATE)")
		src := fs.String("source", "sheets", "sheets|workbook")
		input := fs.String("input", "", "xlsx path for --source=workbook")
		out := fs.String("out", "", "output directory override")
		_ = fs.Parse(os.Args[2:])

		if strings.TrimSpace(*date) != "" {
			if _, err := time.Parse(config.DateLayout, *date); err != nil {
				must(log, fmt.Errorf("--date must be DD.MM.YYYY, got %q", *date))
			}
			cfg.TargetDate = *date
		}
		if strings.TrimSpace(*out) != "" {
			cfg.OutputDir = *out
		}

		ctx := context.Background()
		reader, err := makeSource(ctx, cfg, *src, *input)
		must(log, err)

		var channel notify.Channel
		if cfg.WebhookURL != "" {
			channel = notify.NewWebhook(cfg.WebhookURL, time.Duration(cfg.WebhookTimeoutMs)*time.Millisecond, cfg.RetryAttempts)
		} else {
			log.Warn().Msg("WEBHOOK_URL not set, skipping notification")
		}

		audit := openAudit(log, cfg)
		if audit != nil {
			defer audit.Close()
		}

		runner := pipeline.NewRunner(cfg, log, reader, channel, audit)
		result, err := runner.Run(ctx)
		must(log, err)
		fmt.Printf("run %s done: exported=%d total=%s accuracy=%.1f%%\n",
			result.RunID, result.Summary.Count, pipeline.FormatCents(result.Summary.TotalCents), result.Summary.AccuracyRate)
	case "notify:test":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		message := fs.String("message", "billfeed webhook test", "message to send")
		_ = fs.Parse(os.Args[2:])
		must(log, cfg.Require("WEBHOOK_URL", cfg.WebhookURL))
		channel := notify.NewWebhook(cfg.WebhookURL, time.Duration(cfg.WebhookTimeoutMs)*time.Millisecond, cfg.RetryAttempts)
		must(log, channel.Send(context.Background(), *message))
		fmt.Println("notification delivered")
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to show")
		_ = fs.Parse(os.Args[2:])
		must(log, cfg.Require("AUDIT_DB_PATH", cfg.AuditDBPath))
		db, err := storage.Open(cfg.AuditDBPath)
		must(log, err)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(log, err)
		for _, r := range runs {
			fmt.Printf("%s  %s  exported=%d/%d  total=%s  accuracy=%.1f%%  batches=%s\n",
				r.CreatedAt, r.TargetDate, r.Exported, r.DateMatches,
				pipeline.FormatCents(r.TotalCents), r.Accuracy, strings.Join(r.Batches, ","))
		}
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

func makeSource(ctx context.Context, cfg config.Config, kind, input string) (source.Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "sheets":
		return sheetssource.New(ctx, cfg)
	case "workbook":
		if strings.TrimSpace(input) == "" {
			return nil, fmt.Errorf("--input is required with --source=workbook")
		}
		return workbooksource.New(input), nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", kind)
	}
}

func openAudit(log zerolog.Logger, cfg config.Config) *storage.DB {
	if strings.TrimSpace(cfg.AuditDBPath) == "" {
		return nil
	}
	db, err := storage.Open(cfg.AuditDBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.AuditDBPath).Msg("run audit disabled")
		return nil
	}
	return db
}

func usage() {
	fmt.Println("usage: billfeed <command>")
	fmt.Println("commands:")
	fmt.Println("  run          --date=DD.MM.YYYY --source=sheets|workbook [--input=./transfers.xlsx] [--out=./out]")
	fmt.Println("  notify:test  --message=...")
	fmt.Println("  runs:list    --limit=20")
}

func must(log zerolog.Logger, err error) {
	if err == nil {
		return
	}
	log.Error().Err(err).Msg("run aborted")
	os.Exit(exitCode(err))
}

// Exit codes, one per error kind: 2 not found, 3 schema, 4 format,
// 5 transient backend failure, 1 anything else.
func exitCode(err error) int {
	var notFound *internal.NotFoundError
	if errors.As(err, &notFound) {
		return 2
	}
	var schema *internal.SchemaError
	if errors.As(err, &schema) {
		return 3
	}
	var format *internal.FormatError
	if errors.As(err, &format) {
		return 4
	}
	var transient *internal.TransientAPIError
	if errors.As(err, &transient) {
		return 5
	}
	return 1
}
