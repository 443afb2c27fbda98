package earnings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleSummary = `{"quoteSummary":{"result":[{
	"price":{"shortName":"Apple Inc.","longName":"Apple Inc."},
	"calendarEvents":{"earnings":{
		"earningsDate":[{"raw":1746131400,"fmt":"2025-05-01"}],
		"earningsCallDate":[{"raw":1746133200,"fmt":"2025-05-01"}]
	}},
	"defaultKeyStatistics":{
		"mostRecentQuarter":{"raw":1743379200,"fmt":"2025-03-31"},
		"lastFiscalYearEnd":{}
	}
}],"error":null}}`

const notFoundSummary = `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: ZZZZ"}}}`

func newYahooServer(t *testing.T, crumbCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(crumbCalls, 1)
		if _, err := r.Cookie("A3"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("crumb123"))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "crumb123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
		case "AAPL":
			w.Write([]byte(appleSummary))
		case "ZZZZ":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(notFoundSummary))
		case "EMPTY":
			w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooFetchMetadata(t *testing.T) {
	var crumbCalls int32
	srv := newYahooServer(t, &crumbCalls)
	f := NewYahooFetcher(ProviderConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie"})

	md, err := f.FetchMetadata(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", md.CompanyName)
	assert.Equal(t, float64(1746131400), md.Fields[FieldEarningsTimestamp])
	assert.Equal(t, float64(1746131400), md.Fields[FieldEarningsTimestampStart])
	assert.NotContains(t, md.Fields, FieldLastFiscalYearEnd)

	assert.Equal(t, map[string]any{"raw": float64(1746133200), "fmt": "2025-05-01"}, md.Fields[FieldCalendarCallDate])

	raw, source, ok := testResolver().Resolve(md)
	require.True(t, ok)
	assert.Equal(t, FieldEarningsTimestamp, source)
	assert.Equal(t, int64(1746131400), raw.Time.Unix())

	_, err = f.FetchMetadata(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&crumbCalls), "session is set up once")
}

func TestYahooNotFound(t *testing.T) {
	var crumbCalls int32
	srv := newYahooServer(t, &crumbCalls)
	f := NewYahooFetcher(ProviderConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie"})

	for _, ticker := range []string{"ZZZZ", "EMPTY"} {
		_, err := f.FetchMetadata(context.Background(), ticker)
		assert.ErrorIs(t, err, ErrNotFound, ticker)
	}
}

func TestYahooServerErrorIsNotNotFound(t *testing.T) {
	var crumbCalls int32
	srv := newYahooServer(t, &crumbCalls)
	f := NewYahooFetcher(ProviderConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie"})

	_, err := f.FetchMetadata(context.Background(), "BOOM")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestYahooTrackReportsAnnouncementNotCall(t *testing.T) {
	var crumbCalls int32
	srv := newYahooServer(t, &crumbCalls)
	f := NewYahooFetcher(ProviderConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie"})

	report, err := NewTracker(f, testResolver(), nil).Track(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)

	rec := report.Groups[0].Records[0]
	assert.Equal(t, FieldEarningsTimestamp, rec.Source)
	assert.Equal(t, "16:30:00", rec.Earnings.Clock(), "call starts at 17:00, announcement at 16:30")
	assert.Equal(t, "EDT", rec.Earnings.Zone())
}

func TestYahooCookieStatusErrorStillFetchesCrumb(t *testing.T) {
	var crumbCalls int32
	srv := newYahooServer(t, &crumbCalls)
	f := NewYahooFetcher(ProviderConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/missing-cookie-page"})

	// no session cookie, so the crumb request is refused and lookups go out without one
	_, err := f.FetchMetadata(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&crumbCalls), "a status error on the cookie page must not skip the crumb request")
}

func TestYahooSendsConfiguredUserAgentUnderBasePath(t *testing.T) {
	var gotAgent, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "quoteSummary") {
			gotAgent = r.Header.Get("User-Agent")
			gotPath = r.URL.Path
			w.Write([]byte(appleSummary))
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher(ProviderConfig{
		BaseURL:   srv.URL + "/yf/",
		CookieURL: srv.URL + "/cookie",
		UserAgent: "tracker-test",
	})
	_, err := f.FetchMetadata(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "tracker-test", gotAgent)
	assert.Equal(t, "/yf/v10/finance/quoteSummary/AAPL", gotPath)
}
