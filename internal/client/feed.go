package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/domain"
	"catalog/feedsync/internal/proxy"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

type FeedClient interface {
	// Fetch returns the raw feed body. Any failure is a *domain.FetchError.
	Fetch(ctx context.Context, feedURL string) (string, error)
}

type feedClient struct {
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier
}

func NewFeedClient(cfg config.FeedConfig, proxySupplier proxy.ProxySupplier) FeedClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(max(cfg.RetryWait*5, cfg.RetryWait)).
		SetHeader("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	return &feedClient{
		httpClient:    client,
		proxySupplier: proxySupplier,
	}
}

func (c *feedClient) Fetch(ctx context.Context, feedURL string) (string, error) {
	display := RedactURL(feedURL)
	started := time.Now()

	body, err := c.get(ctx, feedURL)
	if err != nil && c.canSwitchProxy(ctx, err) {
		newProxy := c.proxySupplier.Get()
		log.Warnf("🔄 Fetch through proxy failed, switching to %s: %v", newProxy, err)
		c.httpClient.SetProxy(newProxy)
		body, err = c.get(ctx, feedURL)
	}
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.URL = display
			return "", fetchErr
		}
		return "", &domain.FetchError{URL: display, Err: err}
	}

	if IsHTMLPage(body) {
		return "", &domain.FetchError{
			URL: display,
			Err: fmt.Errorf("feed returned an HTML page instead of XML: %s", DescribeHTMLPage(body)),
		}
	}

	log.Debugf("Fetched %d bytes from %s in %v", len(body), display, time.Since(started).Round(time.Millisecond))
	return body, nil
}

func (c *feedClient) get(ctx context.Context, feedURL string) (string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(feedURL)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &domain.FetchError{
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	return resp.String(), nil
}

// canSwitchProxy reports whether a transport failure may be retried once through another proxy.
func (c *feedClient) canSwitchProxy(ctx context.Context, err error) bool {
	if ctx.Err() != nil || c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return false
	}
	var fetchErr *domain.FetchError
	return !errors.As(err, &fetchErr)
}

// RedactURL drops the query string, which carries the feed credentials.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "REDACTED"
	}
	u.User = nil
	return u.String()
}
