package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a MetadataFetcher when the provider has no
// record for the symbol.
var ErrNotFound = errors.New("ticker not found")

// MetadataFetcher defines the interface for looking up one ticker.
// Implementations issue one read-only request per call and never retry.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, ticker string) (*Metadata, error)
}

// ProviderConfig selects and configures a MetadataFetcher
type ProviderConfig struct {
	Name        string
	BaseURL     string
	CookieURL   string
	CalendarURL string
	UserAgent   string
	Timeout     time.Duration
	MinInterval time.Duration
	StaticFile  string
}

// NewFetcher creates the fetcher named by cfg.Name.
func NewFetcher(cfg ProviderConfig) (MetadataFetcher, error) {
	switch cfg.Name {
	case "", "yahoo":
		return NewYahooFetcher(cfg), nil
	case "yahoo-calendar":
		return NewYahooCalendarFetcher(cfg), nil
	case "static":
		f, err := LoadStaticFetcher(cfg.StaticFile)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
