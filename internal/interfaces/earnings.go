package interfaces

import (
	"context"

	"earnings-tracker/internal/earnings"
)

// EarningsTracker looks up earnings dates for a list of tickers
type EarningsTracker interface {
	// Track processes tickers sequentially and returns the aggregated report.
	// Per-ticker failures end up in Report.Unavailable, not in the error.
	Track(ctx context.Context, tickers []string) (*earnings.Report, error)
}

// ReportExporter persists a report snapshot
type ReportExporter interface {
	Export(ctx context.Context, report *earnings.Report, path string) error
}
