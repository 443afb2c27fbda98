package earnings

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"earnings-tracker/internal/logger"
)

const (
	defaultCalendarURL = "https://finance.yahoo.com/calendar/earnings"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// YahooCalendarFetcher scrapes the Yahoo earnings calendar page for a symbol.
// It is slower than the JSON API but needs no crumb.
type YahooCalendarFetcher struct {
	base        *colly.Collector
	calendarURL string
	userAgent   string
	limiter     *rate.Limiter
	now         func() time.Time
}

// NewYahooCalendarFetcher creates a calendar page scraper
func NewYahooCalendarFetcher(cfg ProviderConfig) *YahooCalendarFetcher {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.AllowURLRevisit(),
	)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	f := &YahooCalendarFetcher{
		base:        c,
		calendarURL: cfg.CalendarURL,
		userAgent:   cfg.UserAgent,
		now:         time.Now,
	}
	if f.calendarURL == "" {
		f.calendarURL = defaultCalendarURL
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if cfg.MinInterval > 0 {
		f.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return f
}

type calendarRow struct {
	symbol  string
	company string
	when    RawTime
}

// FetchMetadata scrapes the calendar rows for one ticker
func (f *YahooCalendarFetcher) FetchMetadata(ctx context.Context, ticker string) (*Metadata, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows   []calendarRow
		status int
	)

	c := f.base.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", f.userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})
	c.OnHTML("table tbody tr", func(e *colly.HTMLElement) {
		if row, ok := parseCalendarRow(e.DOM); ok {
			rows = append(rows, row)
		}
	})

	pageURL := f.calendarURL + "?symbol=" + url.QueryEscape(ticker)
	logger.Debug(ctx, "Scraping earnings calendar", "ticker", ticker, "url", pageURL)

	if err := c.Visit(pageURL); err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	rows = filterRows(rows, ticker)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}

	return f.toMetadata(ticker, rows), nil
}

func (f *YahooCalendarFetcher) toMetadata(ticker string, rows []calendarRow) *Metadata {
	md := &Metadata{Symbol: ticker, Fields: make(map[string]any)}
	for _, r := range rows {
		if r.company != "" {
			md.CompanyName = r.company
			break
		}
	}

	var dated []calendarRow
	for _, r := range rows {
		if !r.when.Time.IsZero() {
			dated = append(dated, r)
		}
	}
	if len(dated) == 0 {
		return md
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].when.Time.Before(dated[j].when.Time)
	})

	history := make([]any, 0, len(dated))
	for _, r := range dated {
		history = append(history, calendarValue(r.when))
	}
	md.Fields[FieldHistoryEarningsDates] = history

	// the page mixes past and scheduled reports: take the first one not
	// before today, else the latest
	y, m, d := f.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := dated[len(dated)-1]
	for _, r := range dated {
		if !r.when.Time.Before(today) {
			next = r
			break
		}
	}

	if next.when.DateOnly {
		md.Fields[FieldCalendarEarningsDate] = calendarValue(next.when)
	} else {
		md.Fields[FieldEarningsTimestamp] = calendarValue(next.when)
	}
	return md
}

// calendarValue encodes a parsed cell so ParseValue reads it back unchanged.
func calendarValue(raw RawTime) any {
	switch {
	case raw.DateOnly:
		return raw.Time.Format("2006-01-02")
	case raw.Naive:
		return raw.Time.Format("2006-01-02T15:04:05")
	default:
		return raw.Time
	}
}

func filterRows(rows []calendarRow, ticker string) []calendarRow {
	out := rows[:0]
	for _, r := range rows {
		if r.symbol == "" || strings.EqualFold(r.symbol, ticker) {
			out = append(out, r)
		}
	}
	return out
}

func parseCalendarRow(tr *goquery.Selection) (calendarRow, bool) {
	cells := tr.Find("td")
	if cells.Length() == 0 {
		return calendarRow{}, false
	}

	cell := func(label string, index int) string {
		if s := cells.Filter(fmt.Sprintf("td[aria-label='%s']", label)); s.Length() > 0 {
			return strings.TrimSpace(s.First().Text())
		}
		if index < cells.Length() {
			return strings.TrimSpace(cells.Eq(index).Text())
		}
		return ""
	}

	row := calendarRow{
		symbol:  cell("Symbol", 0),
		company: cell("Company", 1),
	}
	if raw, ok := ParseCalendarDate(cell("Earnings Date", 2)); ok {
		row.when = raw
	}
	return row, row.symbol != "" || !row.when.Time.IsZero()
}

var (
	calendarZoneSuffix = regexp.MustCompile(`\s*([A-Z]{2,4})$`)

	calendarZones = map[string]int{
		"EST": -5, "EDT": -4,
		"CST": -6, "CDT": -5,
		"MST": -7, "MDT": -6,
		"PST": -8, "PDT": -7,
		"UTC": 0, "GMT": 0,
	}

	calendarTimeLayouts = []string{
		"Jan 2, 2006, 3 PM",
		"Jan 2, 2006, 3:04 PM",
		"Jan 2, 2006 3 PM",
		"Jan 2, 2006 3:04 PM",
		"January 2, 2006, 3 PM",
		"January 2, 2006, 3:04 PM",
	}

	calendarDateLayouts = []string{
		"Jan 2, 2006",
		"January 2, 2006",
		"2006-01-02",
	}
)

// ParseCalendarDate reads an "Earnings Date" cell such as
// "May 1, 2025, 4 PM EDT". Known US zone abbreviations give an aware time;
// anything else is naive. A cell without a clock is date-only.
func ParseCalendarDate(s string) (RawTime, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || s == "-" {
		return RawTime{}, false
	}

	var loc *time.Location
	if m := calendarZoneSuffix.FindStringSubmatch(s); m != nil {
		zone := m[1]
		if offset, ok := calendarZones[zone]; ok {
			loc = time.FixedZone(zone, offset*3600)
			s = strings.TrimSpace(strings.TrimSuffix(s, m[0]))
		}
	}
	// Yahoo sometimes glues the zone to the meridiem ("4 PMEDT")
	for zone, offset := range calendarZones {
		if strings.HasSuffix(s, "AM"+zone) || strings.HasSuffix(s, "PM"+zone) {
			loc = time.FixedZone(zone, offset*3600)
			s = strings.TrimSuffix(s, zone)
			break
		}
	}

	for _, layout := range calendarTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if loc == nil {
				return RawTime{Time: t, Naive: true}, true
			}
			y, mo, d := t.Date()
			hh, mm, _ := t.Clock()
			return RawTime{Time: time.Date(y, mo, d, hh, mm, 0, 0, loc)}, true
		}
	}
	for _, layout := range calendarDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return RawTime{Time: t, DateOnly: true}, true
		}
	}
	return RawTime{}, false
}
