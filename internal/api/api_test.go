package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGETMergesHeaders(t *testing.T) {
	var gotAgent, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithHeader("User-Agent", "tracker-test"))
	resp, err := client.GET(context.Background(), "/quote", map[string]string{"Referer": "https://example.test/"})
	require.NoError(t, err)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.ParseJSON(&body))
	assert.True(t, body.OK)
	assert.Equal(t, "tracker-test", gotAgent)
	assert.Equal(t, "https://example.test/", gotReferer)
}

func TestBaseURLLeavesAbsoluteURLs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/api"))
	_, err := client.GET(context.Background(), "/quote")
	require.NoError(t, err)
	_, err = client.GET(context.Background(), srv.URL+"/cookie")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/quote", "/cookie"}, paths)
}

func TestErrorStatusReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Quote not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient().GET(context.Background(), srv.URL)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("dial tcp: refused")))
}

func TestMinIntervalSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient(WithMinInterval(50 * time.Millisecond))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.GET(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestCookieJarKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "B", Value: "session", Path: "/"})
			return
		}
		if c, err := r.Cookie("B"); err != nil || c.Value != "session" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := NewClient(WithCookieJar())
	_, err := client.GET(context.Background(), srv.URL+"/login")
	require.NoError(t, err)
	_, err = client.GET(context.Background(), srv.URL+"/data")
	assert.NoError(t, err)
}
