package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/flipscore/config"
	"github.com/alejandrodnm/flipscore/internal/adapters/feed"
	"github.com/alejandrodnm/flipscore/internal/adapters/notify"
	"github.com/alejandrodnm/flipscore/internal/adapters/storage"
	"github.com/alejandrodnm/flipscore/internal/application/scanner"
	"github.com/alejandrodnm/flipscore/internal/application/settings"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "do not persist deals to storage")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full ranking table + breakdown (default: compact 1-line)")
	evaluate := flag.String("evaluate", "", "evaluate the listings in this YAML/JSON file once and print the full breakdown")
	comps := flag.String("comps", "", "comma-separated comparable sale prices used with -evaluate")
	history := flag.Duration("history", 0, "print the stored deal history for this window (e.g. 24h) and exit")
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
	setupLogger(cfg.Log)

	prices, err := cfg.LoadPricing()
	if err != nil {
		slog.Error("failed to load pricing table", "err", err, "path", cfg.Pricing.Path)
		os.Exit(1)
	}
	holder := settings.NewHolder(cfg.Settings.ToDomain(), prices)

	slog.Info("flipscore starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"pricing", prices.Version(),
		"strategy", cfg.Settings.Strategy,
		"dry_run", *dryRun,
		"once", *once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsole(*table || *evaluate != "", cfg.Scanner.HotScore)

	if *evaluate != "" {
		if err := runEvaluate(ctx, *evaluate, *comps, cfg, holder, notifier); err != nil {
			slog.Error("evaluate failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var store *storage.SQLiteStorage
	if !*dryRun || *history > 0 {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *history > 0 {
		if err := runHistory(ctx, store, notifier, *history); err != nil {
			slog.Error("history failed", "err", err)
			os.Exit(1)
		}
		return
	}

	scanCfg := scanner.Config{
		ScanInterval: cfg.ScanInterval(),
		Filter:       filterConfig(cfg.Scanner),
		Workers:      cfg.Scanner.Workers,
		HotScore:     cfg.Scanner.HotScore,
		Once:         *once,
		DryRun:       *dryRun,
	}

	var st ports.Storage
	if store != nil {
		st = store
	}
	s := scanner.New(scanCfg, newProvider(cfg.Feed), st, notifier, holder)

	go watchReload(ctx, *configPath, holder, s)

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("flipscore stopped cleanly")
}

// newProvider elige el feed: el fichero local tiene prioridad sobre la URL.
func newProvider(cfg config.FeedConfig) ports.ListingProvider {
	if cfg.File != "" {
		return feed.NewFileProvider(cfg.File, cfg.Platform)
	}
	return feed.NewHTTPProvider(cfg.URL, cfg.RatePerSec, cfg.Platform)
}

func filterConfig(cfg config.ScannerConfig) scanner.FilterConfig {
	return scanner.FilterConfig{
		MinDealScore: cfg.MinDealScore,
		MinNetProfit: domain.Dollars(cfg.MinNetProfit),
		MaxRisk:      cfg.MaxRisk,
		MaxDistance:  cfg.MaxDistanceMiles,
	}
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
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
