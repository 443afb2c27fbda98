package earnings

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StaticFetcher serves metadata from a YAML fixture keyed by ticker:
//
//	AAPL:
//	  shortName: Apple Inc.
//	  earningsTimestamp: 1746131400
//	MSFT:
//	  longName: Microsoft Corporation
//	  calendar.earningsDate: "2025-04-30"
//
// Tickers missing from the file are not found.
type StaticFetcher struct {
	entries map[string]map[string]any
}

// NewStaticFetcher creates a fetcher over in-memory entries.
func NewStaticFetcher(entries map[string]map[string]any) *StaticFetcher {
	f := &StaticFetcher{entries: make(map[string]map[string]any, len(entries))}
	for symbol, fields := range entries {
		f.entries[strings.ToUpper(strings.TrimSpace(symbol))] = fields
	}
	return f
}

// LoadStaticFetcher reads a YAML fixture file.
func LoadStaticFetcher(path string) (*StaticFetcher, error) {
	if path == "" {
		return nil, fmt.Errorf("static provider requires a fixture file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var entries map[string]map[string]any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file: %w", err)
	}
	return NewStaticFetcher(entries), nil
}

// FetchMetadata returns the fixture entry for ticker
func (s *StaticFetcher) FetchMetadata(ctx context.Context, ticker string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, ok := s.entries[strings.ToUpper(ticker)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}

	md := &Metadata{Symbol: ticker, Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		md.Fields[k] = v
	}
	for _, key := range []string{"shortName", "longName"} {
		if name, ok := fields[key].(string); ok && name != "" {
			md.CompanyName = name
			break
		}
	}
	return md, nil
}
