package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"earnings-tracker/internal/earnings"
	"earnings-tracker/internal/earnings/earningsobs"
	"earnings-tracker/internal/export"
	"earnings-tracker/internal/export/exportobs"
	"earnings-tracker/internal/logger"
	"earnings-tracker/internal/report"
	"earnings-tracker/internal/store"
	"earnings-tracker/internal/tickers"
	"earnings-tracker/internal/trace"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	inline     string
	file       string
	output     string
	configPath string
	provider   string
}

func parseFlags(args []string, stderr io.Writer) (*options, bool, error) {
	var opts options
	fs := flag.NewFlagSet("earnings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.inline, "t", "", "comma-separated ticker symbols (e.g. AAPL,MSFT,GOOGL)")
	fs.StringVar(&opts.inline, "tickers", "", "alias for -t")
	fs.StringVar(&opts.file, "f", "", "file with one ticker symbol per line")
	fs.StringVar(&opts.file, "file", "", "alias for -f")
	fs.StringVar(&opts.output, "o", "earnings_dates.csv", "output CSV file")
	fs.StringVar(&opts.output, "output", "earnings_dates.csv", "alias for -o")
	fs.StringVar(&opts.configPath, "config", "config.yaml", "path to config file (optional)")
	fs.StringVar(&opts.provider, "provider", "", "data provider: yahoo, yahoo-calendar or static")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if fs.NArg() > 0 {
		return nil, false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	outputSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "o" || f.Name == "output" {
			outputSet = true
		}
	})
	return &opts, outputSet, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, outputSet, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}

	symbols, err := tickers.Resolve(opts.inline, opts.file)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, tickers.ErrUsage) {
			fmt.Fprintln(stderr, "Usage: earnings (-t AAPL,MSFT | -f tickers.txt) [-o earnings_dates.csv]")
			return exitUsage
		}
		return exitError
	}

	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(stderr, "Error initializing logger: %v\n", err)
		return exitError
	}
	defer logger.Sync()

	if err := trace.Init(); err != nil {
		fmt.Fprintf(stderr, "Error initializing tracing: %v\n", err)
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}
	if outputSet {
		cfg.Output = opts.output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := earnings.NewFetcher(providerConfig(cfg))
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to create provider", err, "provider", cfg.Provider.Name)
		fmt.Fprintf(stderr, "Error creating provider: %v\n", err)
		return exitError
	}

	source, _ := time.LoadLocation(cfg.Timezone.Source)
	target, _ := time.LoadLocation(cfg.Timezone.Target)

	normalizer := earnings.NewNormalizer(source, target)
	renderer := report.NewRenderer(stdout,
		report.WithColor(cfg.Report.Color),
		report.WithZone(normalizer.Target()),
	)
	tracker := earningsobs.Wrap(earnings.NewTracker(
		earningsobs.WrapFetcher(fetcher, cfg.Provider.Name),
		earnings.NewResolver(earnings.WithFiscalFallbacks(cfg.Extraction.FiscalFallbacks)),
		normalizer,
		earnings.WithProgress(renderer.Progress),
		earnings.WithResults(renderer.Result),
	))

	renderer.Intro(len(symbols))
	result, err := tracker.Track(ctx, symbols)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	renderer.Summary(result)

	exporter := exportobs.Wrap(export.NewWriter())
	if err := exporter.Export(ctx, result, cfg.Output); err != nil {
		fmt.Fprintf(stderr, "Error saving results: %v\n", err)
		return exitError
	}
	renderer.Saved(cfg.Output)

	return exitOK
}

func loadConfig(opts *options) (*store.Config, error) {
	cfg, err := store.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.provider != "" {
		cfg.Provider.Name = opts.provider
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func providerConfig(cfg *store.Config) earnings.ProviderConfig {
	return earnings.ProviderConfig{
		Name:        cfg.Provider.Name,
		BaseURL:     cfg.Provider.BaseURL,
		CookieURL:   cfg.Provider.CookieURL,
		CalendarURL: cfg.Provider.CalendarURL,
		UserAgent:   cfg.Provider.UserAgent,
		Timeout:     cfg.Provider.Timeout,
		MinInterval: cfg.Provider.MinInterval,
		StaticFile:  cfg.Provider.StaticFile,
	}
}
