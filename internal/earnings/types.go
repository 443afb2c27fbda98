package earnings

import (
	"fmt"
	"time"
)

// Metadata is the raw per-ticker data returned by a provider. Fields holds
// provider values as-is (epoch numbers, date strings, time.Time, Yahoo
// {raw, fmt} maps, or lists of those); only the Resolver interprets them.
type Metadata struct {
	Symbol      string
	CompanyName string
	Fields      map[string]any
}

// Field returns a non-empty field value.
func (m *Metadata) Field(name string) (any, bool) {
	if m == nil || m.Fields == nil {
		return nil, false
	}
	v, ok := m.Fields[name]
	if !ok || isEmpty(v) {
		return nil, false
	}
	return v, true
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// RawTime is an extracted timestamp before timezone normalization.
type RawTime struct {
	Time time.Time
	// DateOnly means the provider gave no time of day.
	DateOnly bool
	// Naive means the value had no zone and must be read in the source zone.
	Naive bool
}

// EarningsTime is a normalized Eastern Time earnings date.
type EarningsTime struct {
	Time    time.Time
	HasTime bool
}

// Date returns the calendar date as YYYY-MM-DD.
func (e EarningsTime) Date() string {
	return e.Time.Format("2006-01-02")
}

// DateWords returns the date as "1st May, 2025".
func (e EarningsTime) DateWords() string {
	day := e.Time.Day()
	return fmt.Sprintf("%d%s %s, %d", day, ordinalSuffix(day), e.Time.Month(), e.Time.Year())
}

// Clock returns HH:MM:SS, or "" for date-only values.
func (e EarningsTime) Clock() string {
	if !e.HasTime {
		return ""
	}
	return e.Time.Format("15:04:05")
}

// Zone returns the zone abbreviation (EST or EDT), or "" for date-only values.
func (e EarningsTime) Zone() string {
	if !e.HasTime {
		return ""
	}
	return e.Time.Format("MST")
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// Outcome says how a ticker lookup ended. It is diagnostic only: every
// outcome other than OutcomeFound renders as "unavailable".
type Outcome string

const (
	OutcomeFound        Outcome = "found"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeLookupFailed Outcome = "lookup_failed"
	OutcomeNoDate       Outcome = "no_date"
)

// Record is the result for one ticker.
type Record struct {
	Ticker      string
	CompanyName string
	// Earnings is nil when no date could be resolved.
	Earnings *EarningsTime
	// Source names the metadata field that supplied the date.
	Source  string
	Outcome Outcome
}

// HasDate reports whether the record carries an earnings date.
func (r Record) HasDate() bool {
	return r.Earnings != nil
}

// Company returns the company name, falling back to the ticker.
func (r Record) Company() string {
	if r.CompanyName != "" {
		return r.CompanyName
	}
	return r.Ticker
}

// DateGroup holds the records sharing one calendar date.
type DateGroup struct {
	Date    string
	Records []Record
}

// Report is the aggregated result of one run.
type Report struct {
	Groups      []DateGroup
	Unavailable []Record
}

// Ordered returns dated records in group order followed by undated ones.
func (r *Report) Ordered() []Record {
	if r == nil {
		return nil
	}
	out := make([]Record, 0, r.Len())
	for _, g := range r.Groups {
		out = append(out, g.Records...)
	}
	return append(out, r.Unavailable...)
}

// Len returns the total number of records.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return r.DatedCount() + len(r.Unavailable)
}

// DatedCount returns the number of records with a date.
func (r *Report) DatedCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, g := range r.Groups {
		n += len(g.Records)
	}
	return n
}
