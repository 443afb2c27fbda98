package earningsobs

import (
	"context"
	"errors"
	"time"

	"earnings-tracker/internal/earnings"
	"earnings-tracker/internal/interfaces"
	"earnings-tracker/internal/logger"
	"earnings-tracker/internal/trace"
)

// observableTracker wraps EarningsTracker with logging and tracing
type observableTracker struct {
	inner interfaces.EarningsTracker
}

var _ interfaces.EarningsTracker = (*observableTracker)(nil)

// Wrap wraps an EarningsTracker with observability middleware
func Wrap(tracker interfaces.EarningsTracker) interfaces.EarningsTracker {
	return &observableTracker{inner: tracker}
}

func (o *observableTracker) Track(ctx context.Context, tickers []string) (*earnings.Report, error) {
	ctx, span := trace.StartSpan(ctx, "earnings.Track")
	defer span.End()

	logger.Info(ctx, "Starting earnings lookup", "ticker_count", len(tickers))
	start := time.Now()

	report, err := o.inner.Track(ctx, tickers)
	duration := time.Since(start)

	if err != nil {
		trace.Fail(span, err)
		logger.ErrorWithErr(ctx, "Earnings lookup aborted", err, "duration_ms", duration.Milliseconds())
		return nil, err
	}

	logger.Info(ctx, "Earnings lookup completed",
		"ticker_count", report.Len(),
		"dated", report.DatedCount(),
		"unavailable", len(report.Unavailable),
		"groups", len(report.Groups),
		"duration_ms", duration.Milliseconds(),
	)
	return report, nil
}

type observableFetcher struct {
	inner    earnings.MetadataFetcher
	provider string
}

// WrapFetcher wraps a MetadataFetcher so every lookup gets its own span.
func WrapFetcher(fetcher earnings.MetadataFetcher, provider string) earnings.MetadataFetcher {
	return &observableFetcher{inner: fetcher, provider: provider}
}

func (o *observableFetcher) FetchMetadata(ctx context.Context, ticker string) (*earnings.Metadata, error) {
	op := logger.StartOperation(ctx, "earnings.FetchMetadata", "ticker", ticker, "provider", o.provider)

	md, err := o.inner.FetchMetadata(op.GetContext(), ticker)
	switch {
	case errors.Is(err, earnings.ErrNotFound):
		// an unknown ticker is an answer, not a failure
		op.End("found", false)
	case err != nil:
		op.EndWithError(err)
	default:
		fields := 0
		if md != nil {
			fields = len(md.Fields)
		}
		op.End("found", true, "fields", fields)
	}
	return md, err
}
