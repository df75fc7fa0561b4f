package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/domain"
	"catalog/feedsync/internal/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?><root><product><code>1</code></product></root>`

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		Timeout:   5 * time.Second,
		UserAgent: "feedsync-test",
	}
}

func TestFeedClient_Fetch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewFeedClient(testFeedConfig(), nil)
	body, err := c.Fetch(context.Background(), srv.URL+"/xml/?start=0&limit=10")

	require.NoError(t, err)
	assert.Equal(t, sampleFeed, body)
	assert.Equal(t, "start=0&limit=10", gotQuery)
	assert.Equal(t, "feedsync-test", gotAgent)
}

func TestFeedClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewFeedClient(testFeedConfig(), nil)
	body, err := c.Fetch(context.Background(), srv.URL+"/xml/?pass=secret")

	require.Error(t, err)
	assert.Empty(t, body)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.NotContains(t, err.Error(), "secret")
}

func TestFeedClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	c := NewFeedClient(testFeedConfig(), nil)
	_, err := c.Fetch(context.Background(), deadURL+"/xml")

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.NotNil(t, fetchErr.Unwrap())
}

func TestFeedClient_HTMLPageIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Invalid password</title></head><body>denied</body></html>"))
	}))
	defer srv.Close()

	c := NewFeedClient(testFeedConfig(), nil)
	_, err := c.Fetch(context.Background(), srv.URL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "Invalid password")
}

func TestFeedClient_SwitchesProxyAfterTransportFailure(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	var proxied string
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.String()
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer live.Close()

	supplier := proxy.NewProxySupplier(context.Background(), []string{deadURL, live.URL}, "", false)
	c := NewFeedClient(testFeedConfig(), supplier)

	body, err := c.Fetch(context.Background(), "http://feed.invalid/xml")
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, body)
	assert.Equal(t, "http://feed.invalid/xml", proxied)
}

func TestFeedClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFeedClient(testFeedConfig(), nil).Fetch(ctx, srv.URL)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHTMLPage(t *testing.T) {
	assert.True(t, IsHTMLPage("  <!DOCTYPE html><html></html>"))
	assert.True(t, IsHTMLPage("<HTML><body>x</body></HTML>"))
	assert.True(t, IsHTMLPage("\ufeff<html></html>"))
	assert.False(t, IsHTMLPage(sampleFeed))
	assert.False(t, IsHTMLPage("<root/>"))
	assert.False(t, IsHTMLPage(""))
}

func TestDescribeHTMLPage(t *testing.T) {
	assert.Equal(t, "Maintenance", DescribeHTMLPage("<html><head><title> Maintenance </title></head></html>"))
	assert.Equal(t, "Service temporarily down", DescribeHTMLPage("<html><body><p>Service   temporarily</p> <p>down</p></body></html>"))
	assert.Equal(t, "empty HTML page", DescribeHTMLPage("<html></html>"))

	long := DescribeHTMLPage("<html><body>" + strings.Repeat("ş", 200) + "</body></html>")
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, strings.Repeat("ş", 120)+"...", long)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://feed.example.com/xml/?REDACTED", RedactURL("https://feed.example.com/xml/?R=1&pass=secret"))
	assert.Equal(t, "https://feed.example.com/xml", RedactURL("https://user:pw@feed.example.com/xml"))
}
