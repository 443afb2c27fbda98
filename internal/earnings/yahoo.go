package earnings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"earnings-tracker/internal/api"
	"earnings-tracker/internal/logger"
)

const (
	defaultYahooBaseURL   = "https://query1.finance.yahoo.com"
	defaultYahooCookieURL = "https://fc.yahoo.com"
	quoteSummaryModules   = "price,calendarEvents,defaultKeyStatistics"
)

// YahooFetcher reads ticker metadata from the Yahoo Finance quoteSummary
// endpoint, one request per ticker.
type YahooFetcher struct {
	client    *api.Client
	cookieURL string

	sessionOnce sync.Once
	crumb       string
}

// NewYahooFetcher creates a Yahoo Finance fetcher
func NewYahooFetcher(cfg ProviderConfig) *YahooFetcher {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}

	opts := []api.ClientOption{
		api.WithBaseURL(baseURL),
		api.WithCookieJar(),
		api.WithLogging(true),
		api.WithMinInterval(cfg.MinInterval),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Timeout))
	}

	headers := api.YahooFinanceHeaders()
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}
	for key, value := range headers {
		opts = append(opts, api.WithHeader(key, value))
	}

	f := &YahooFetcher{
		client:    api.NewClient(opts...),
		cookieURL: cfg.CookieURL,
	}
	if f.cookieURL == "" {
		f.cookieURL = defaultYahooCookieURL
	}
	return f
}

// yahooValue is Yahoo's {raw, fmt} number wrapper.
type yahooValue struct {
	Raw any    `json:"raw"`
	Fmt string `json:"fmt"`
}

func (v *yahooValue) field() any {
	if v == nil || (v.Raw == nil && v.Fmt == "") {
		return nil
	}
	return map[string]any{"raw": v.Raw, "fmt": v.Fmt}
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"price"`
			CalendarEvents *struct {
				Earnings struct {
					EarningsDate     []yahooValue `json:"earningsDate"`
					EarningsCallDate []yahooValue `json:"earningsCallDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
			DefaultKeyStatistics *struct {
				MostRecentQuarter *yahooValue `json:"mostRecentQuarter"`
				LastFiscalYearEnd *yahooValue `json:"lastFiscalYearEnd"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetadata fetches quoteSummary modules for one ticker
func (y *YahooFetcher) FetchMetadata(ctx context.Context, ticker string) (*Metadata, error) {
	y.sessionOnce.Do(func() { y.startSession(ctx) })

	params := url.Values{}
	params.Set("modules", quoteSummaryModules)
	if y.crumb != "" {
		params.Set("crumb", y.crumb)
	}
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s?%s", url.PathEscape(ticker), params.Encode())

	resp, err := y.client.GET(ctx, path)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo quoteSummary for %s: %w", ticker, err)
	}

	var data quoteSummaryResponse
	if err := resp.ParseJSON(&data); err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary for %s: %w", ticker, err)
	}

	if e := data.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo quoteSummary for %s: %s: %s", ticker, e.Code, e.Description)
	}
	if len(data.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}

	result := data.QuoteSummary.Result[0]
	md := &Metadata{Symbol: ticker, Fields: make(map[string]any)}

	if p := result.Price; p != nil {
		md.CompanyName = p.ShortName
		if md.CompanyName == "" {
			md.CompanyName = p.LongName
		}
		md.Fields["shortName"] = p.ShortName
		md.Fields["longName"] = p.LongName
	}

	if c := result.CalendarEvents; c != nil {
		dates := c.Earnings.EarningsDate
		if len(dates) > 0 {
			list := make([]any, 0, len(dates))
			for i := range dates {
				list = append(list, dates[i].field())
			}
			md.Fields[FieldCalendarEarningsDate] = list
			// earningsDate is the announcement window; the quote endpoint
			// reports its bounds as earningsTimestampStart/End
			md.Fields[FieldEarningsTimestamp] = dates[0].Raw
			md.Fields[FieldEarningsTimestampStart] = dates[0].Raw
			md.Fields[FieldEarningsTimestampEnd] = dates[len(dates)-1].Raw
		}
		// the conference call is not the announcement; kept for diagnostics only
		if calls := c.Earnings.EarningsCallDate; len(calls) > 0 {
			md.Fields[FieldCalendarCallDate] = calls[0].field()
		}
	}

	if s := result.DefaultKeyStatistics; s != nil {
		if v := s.MostRecentQuarter.field(); v != nil {
			md.Fields[FieldMostRecentQuarter] = v
		}
		if v := s.LastFiscalYearEnd.field(); v != nil {
			md.Fields[FieldLastFiscalYearEnd] = v
		}
	}

	return md, nil
}

// startSession obtains the session cookie and crumb Yahoo wants on API
// calls. Failure is not fatal: requests go out without a crumb.
func (y *YahooFetcher) startSession(ctx context.Context) {
	// fc.yahoo.com answers 404 but still sets the session cookie
	var httpErr *api.HTTPError
	if _, err := y.client.GET(ctx, y.cookieURL, api.BrowserHeaders()); err != nil && !errors.As(err, &httpErr) {
		logger.Warn(ctx, "Yahoo session cookie request failed", "error", err)
		return
	}

	resp, err := y.client.GET(ctx, "/v1/test/getcrumb")
	if err != nil {
		logger.Warn(ctx, "Yahoo crumb request failed, continuing without crumb", "error", err)
		return
	}
	y.crumb = strings.TrimSpace(resp.String())
	logger.Debug(ctx, "Yahoo session established", "has_crumb", y.crumb != "")
}
