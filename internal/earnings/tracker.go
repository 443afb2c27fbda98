package earnings

import (
	"context"
	"errors"

	"earnings-tracker/internal/logger"
	"earnings-tracker/internal/tickers"
)

// ProgressFunc is called before each ticker is looked up. index is 1-based.
type ProgressFunc func(index, total int, ticker string)

// ResultFunc is called with each finished record.
type ResultFunc func(rec Record)

// Tracker runs the lookup, extraction and normalization steps for each
// ticker in turn and aggregates the results.
type Tracker struct {
	fetcher    MetadataFetcher
	resolver   *Resolver
	normalizer *Normalizer
	onProgress ProgressFunc
	onResult   ResultFunc
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) TrackerOption {
	return func(t *Tracker) {
		t.onProgress = fn
	}
}

// WithResults registers a per-record callback.
func WithResults(fn ResultFunc) TrackerOption {
	return func(t *Tracker) {
		t.onResult = fn
	}
}

// NewTracker creates a tracker. A nil resolver or normalizer gets the default.
func NewTracker(fetcher MetadataFetcher, resolver *Resolver, normalizer *Normalizer, opts ...TrackerOption) *Tracker {
	if resolver == nil {
		resolver = NewResolver()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil, nil)
	}
	t := &Tracker{
		fetcher:    fetcher,
		resolver:   resolver,
		normalizer: normalizer,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track looks up every ticker sequentially. Per-ticker failures become
// unavailable records; only context cancellation aborts the run.
func (t *Tracker) Track(ctx context.Context, symbols []string) (*Report, error) {
	symbols = tickers.Normalize(symbols)
	records := make([]Record, 0, len(symbols))

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.onProgress != nil {
			t.onProgress(i+1, len(symbols), symbol)
		}

		rec := t.lookup(ctx, symbol)
		if t.onResult != nil {
			t.onResult(rec)
		}
		records = append(records, rec)
	}

	return Aggregate(records), nil
}

func (t *Tracker) lookup(ctx context.Context, symbol string) Record {
	rec := Record{Ticker: symbol}

	md, err := t.fetcher.FetchMetadata(ctx, symbol)
	switch {
	case errors.Is(err, ErrNotFound), err == nil && md == nil:
		logger.Warn(ctx, "Ticker not found at provider", "ticker", symbol)
		rec.Outcome = OutcomeNotFound
		return rec
	case err != nil:
		logger.Warn(ctx, "Earnings lookup failed", "ticker", symbol, "error", err)
		rec.Outcome = OutcomeLookupFailed
		return rec
	}

	rec.CompanyName = md.CompanyName

	raw, source, ok := t.resolver.Resolve(md)
	if !ok {
		logger.Info(ctx, "No earnings date field in metadata", "ticker", symbol, "fields", len(md.Fields))
		rec.Outcome = OutcomeNoDate
		return rec
	}

	et := t.normalizer.Normalize(raw)
	rec.Earnings = &et
	rec.Source = source
	rec.Outcome = OutcomeFound

	logger.Debug(ctx, "Earnings date resolved",
		"ticker", symbol,
		"source", source,
		"date", et.Date(),
		"has_time", et.HasTime,
	)
	return rec
}
