package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/arbscout/config"
	"github.com/alejandrodnm/arbscout/internal/adapters/notify"
	"github.com/alejandrodnm/arbscout/internal/adapters/storage"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
	"github.com/alejandrodnm/arbscout/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "use local fixtures instead of real platforms")
	fixturesDir := flag.String("fixtures", "testdata/fixtures", "fixtures directory for -dry-run")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full table + summary (default: compact 1-line)")
	detail := flag.Bool("detail", false, "print step-by-step breakdown for top 3 opportunities")
	matches := flag.Bool("matches", false, "print cross-platform product groups and exit")
	query := flag.String("query", "", "search query (overrides config)")
	history := flag.Duration("history", 0, "print stored opportunities from the last duration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *query != "" {
		cfg.Scanner.Query = *query
	}
	setupLogger(cfg.Log)

	slog.Info("arbscout starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"dry_run", *dryRun,
		"once", *once,
		"query", cfg.Scanner.Query,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsole(*table, *detail)

	if *history > 0 {
		if err := printHistory(ctx, cfg.Storage.DSN, *history, notifier); err != nil {
			slog.Error("history failed", "err", err)
			os.Exit(1)
		}
		return
	}

	adapters, err := buildAdapters(cfg, *dryRun, *fixturesDir)
	if err != nil {
		slog.Error("failed to build adapters", "err", err)
		os.Exit(1)
	}

	s := scanner.New(
		cfg.ScannerSettings(),
		domain.NewFeeModel(cfg.FeeTable()),
		domain.NewScorer(cfg.ScorerConfig()),
		domain.NewMatcher(cfg.MatcherConfig()),
	)

	if *matches {
		notifier.PrintMatches(s.Clusters(ctx, adapters, cfg.ScanOptions()))
		return
	}

	var store ports.Storage
	if !*dryRun {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	runner := scanner.NewRunner(scanner.RunnerConfig{
		Interval: cfg.ScanInterval(),
		Options:  cfg.ScanOptions(),
		DryRun:   *dryRun || *once,
	}, s, adapters, store, notifier)

	if err := runner.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("arbscout stopped cleanly")
}

func printHistory(ctx context.Context, dsn string, window time.Duration, notifier *notify.Console) error {
	db, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	to := time.Now()
	opps, err := db.GetHistory(ctx, to.Add(-window), to)
	if err != nil {
		return err
	}
	slog.Info("history loaded", "from", to.Add(-window).Format(time.RFC3339), "opportunities", len(opps))
	if len(opps) == 0 {
		return notifier.Notify(ctx, nil)
	}
	notifier.PrintTable(opps)
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
