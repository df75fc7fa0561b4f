package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProxySupplier hands out feed proxies in round-robin order
type ProxySupplier interface {
	Get() string
	Len() int
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier returns a supplier over proxies. When check is set each
// proxy is probed against testURL first, one at a time, and dropped if it fails.
func NewProxySupplier(ctx context.Context, proxies []string, testURL string, check bool) ProxySupplier {
	if len(proxies) == 0 || !check {
		return &proxySupplier{proxies: append([]string(nil), proxies...)}
	}

	log.Infof("🔄 Testing %d proxies...", len(proxies))

	valid := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		log.Debugf("🔄 Testing proxy %d/%d: %s", i+1, len(proxies), proxyURL)
		if isProxyValid(ctx, proxyURL, testURL) {
			valid = append(valid, proxyURL)
			log.Infof("✅ Proxy %s is working", proxyURL)
		} else {
			log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
		}
	}

	log.Infof("✅ ProxySupplier initialized with %d working proxies out of %d tested", len(valid), len(proxies))

	return &proxySupplier{proxies: valid}
}

// Get returns the next proxy URL, or "" when there are none
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func (p *proxySupplier) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

// isProxyValid tests if a proxy can reach the feed endpoint
func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12})

	resp, err := client.R().
		SetContext(ctx).
		Head(testURL)

	if err != nil {
		log.Infof("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Infof("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
