package earnings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Metadata field names understood by the Resolver.
const (
	FieldEarningsTimestamp      = "earningsTimestamp"
	FieldEarningsTimestampStart = "earningsTimestampStart"
	FieldEarningsTimestampEnd   = "earningsTimestampEnd"
	FieldNextEarningsDate       = "nextEarningsDate"
	FieldCalendarEarningsDate   = "calendar.earningsDate"
	FieldCalendarCallDate       = "calendar.earningsCallDate"
	FieldHistoryEarningsDates   = "history.earningsDates"
	FieldMostRecentQuarter      = "mostRecentQuarter"
	FieldLastFiscalYearEnd      = "lastFiscalYearEnd"
)

type extractor func(md *Metadata, now time.Time) (RawTime, bool)

type fieldSource struct {
	name    string
	extract extractor
}

// Resolver tries a fixed, ordered list of metadata fields and returns the
// first one that parses as a date or date-time.
type Resolver struct {
	sources []fieldSource
	now     func() time.Time
}

// ResolverOption configures a Resolver
type ResolverOption func(*resolverSettings)

type resolverSettings struct {
	fiscalFallbacks bool
	now             func() time.Time
}

// WithFiscalFallbacks toggles the fiscal-period fields at the end of the
// chain. They name period ends rather than announcement dates.
func WithFiscalFallbacks(enabled bool) ResolverOption {
	return func(s *resolverSettings) {
		s.fiscalFallbacks = enabled
	}
}

// WithClock overrides the clock used to tell past from future timestamps.
func WithClock(now func() time.Time) ResolverOption {
	return func(s *resolverSettings) {
		s.now = now
	}
}

// NewResolver builds the field chain.
func NewResolver(opts ...ResolverOption) *Resolver {
	settings := resolverSettings{fiscalFallbacks: true, now: time.Now}
	for _, opt := range opts {
		opt(&settings)
	}

	sources := []fieldSource{
		{FieldEarningsTimestamp, upcomingTimestamp},
		{FieldEarningsTimestampStart, dateTimeField(FieldEarningsTimestampStart)},
		{FieldNextEarningsDate, dateTimeField(FieldNextEarningsDate)},
		{FieldCalendarEarningsDate, dateOnlyField(FieldCalendarEarningsDate)},
		{FieldHistoryEarningsDates, dateTimeField(FieldHistoryEarningsDates)},
	}
	if settings.fiscalFallbacks {
		sources = append(sources,
			fieldSource{FieldMostRecentQuarter, dateOnlyField(FieldMostRecentQuarter)},
			fieldSource{FieldLastFiscalYearEnd, dateOnlyField(FieldLastFiscalYearEnd)},
		)
	}

	return &Resolver{sources: sources, now: settings.now}
}

// Sources returns the field names in the order they are tried.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.name
	}
	return names
}

// Resolve returns the first usable timestamp and the field that supplied it.
func (r *Resolver) Resolve(md *Metadata) (RawTime, string, bool) {
	if md == nil {
		return RawTime{}, "", false
	}
	now := r.now()
	for _, s := range r.sources {
		if raw, ok := s.extract(md, now); ok {
			return raw, s.name, true
		}
	}
	return RawTime{}, "", false
}

// upcomingTimestamp reads earningsTimestamp. When it is already in the past
// and earningsTimestampStart is not, the start wins: providers keep the last
// report in the first field until the next one is confirmed.
func upcomingTimestamp(md *Metadata, now time.Time) (RawTime, bool) {
	raw, ok := fieldValue(md, FieldEarningsTimestamp, false)
	if !ok {
		return RawTime{}, false
	}
	if !isPast(raw, now) {
		return raw, true
	}
	if start, ok := fieldValue(md, FieldEarningsTimestampStart, false); ok && !isPast(start, now) {
		return start, true
	}
	return raw, true
}

// isPast compares zoned values as instants. Date-only and naive values carry
// no instant, so they compare by calendar date against today in Eastern Time.
func isPast(raw RawTime, now time.Time) bool {
	if !raw.DateOnly && !raw.Naive {
		return raw.Time.Before(now)
	}
	return raw.Time.Format("2006-01-02") < now.In(Eastern()).Format("2006-01-02")
}

func dateTimeField(name string) extractor {
	return func(md *Metadata, _ time.Time) (RawTime, bool) {
		return fieldValue(md, name, false)
	}
}

func dateOnlyField(name string) extractor {
	return func(md *Metadata, _ time.Time) (RawTime, bool) {
		return fieldValue(md, name, true)
	}
}

func fieldValue(md *Metadata, name string, dateOnly bool) (RawTime, bool) {
	v, ok := md.Field(name)
	if !ok {
		return RawTime{}, false
	}
	raw, ok := ParseValue(v, dateOnly)
	if !ok {
		return RawTime{}, false
	}
	if dateOnly && !raw.DateOnly {
		raw = truncateToDate(raw)
	}
	return raw, true
}

// truncateToDate drops the time of day. Zoned values keep their UTC date,
// which is how Yahoo labels its date-only fields.
func truncateToDate(raw RawTime) RawTime {
	t := raw.Time
	if !raw.Naive {
		t = t.UTC()
	}
	y, m, d := t.Date()
	return RawTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseValue interprets one provider value. preferDate selects the formatted
// half of a Yahoo {raw, fmt} pair first.
func ParseValue(v any, preferDate bool) (RawTime, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return RawTime{}, false
		}
		return RawTime{Time: x}, true
	case int:
		return fromEpoch(float64(x))
	case int64:
		return fromEpoch(float64(x))
	case float64:
		return fromEpoch(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return RawTime{}, false
		}
		return fromEpoch(f)
	case string:
		return parseString(x)
	case []any:
		for _, item := range x {
			if raw, ok := ParseValue(item, preferDate); ok {
				return raw, true
			}
		}
	case []string:
		for _, item := range x {
			if raw, ok := parseString(item); ok {
				return raw, true
			}
		}
	case []int64:
		for _, item := range x {
			if raw, ok := fromEpoch(float64(item)); ok {
				return raw, true
			}
		}
	case []time.Time:
		for _, item := range x {
			if !item.IsZero() {
				return RawTime{Time: item}, true
			}
		}
	case map[string]any:
		keys := []string{"raw", "fmt"}
		if preferDate {
			keys = []string{"fmt", "raw"}
		}
		for _, k := range keys {
			if inner, ok := x[k]; ok {
				if raw, ok := ParseValue(inner, preferDate); ok {
					return raw, true
				}
			}
		}
	}
	return RawTime{}, false
}

// Epoch values above this are taken as milliseconds (1e11 s is year 5138).
const epochMillisThreshold = 1e11

func fromEpoch(sec float64) (RawTime, bool) {
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return RawTime{}, false
	}
	if sec > epochMillisThreshold {
		sec /= 1000
	}
	whole, frac := math.Modf(sec)
	return RawTime{Time: time.Unix(int64(whole), int64(frac*1e9)).UTC()}, true
}

func parseString(s string) (RawTime, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RawTime{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return RawTime{Time: t}, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return RawTime{Time: t, Naive: true}, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return RawTime{Time: t, DateOnly: true}, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	return RawTime{}, false
}
