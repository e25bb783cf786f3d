package helpers

import (
	"math/rand"
	"net/url"
	"strings"
	"sync"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// -----------------------------------------------------------------------------
// ProxyRotator cycles through a fixed list of outbound proxies and picks the
// User-Agent sent with every request.
// -----------------------------------------------------------------------------

type ProxyRotator struct {
	mu        sync.Mutex
	proxies   []*url.URL
	index     int
	userAgent string
}

// -----------------------------------------------------------------------------

// NewProxyRotator keeps the valid entries of proxies. A non-empty userAgent
// pins the header, otherwise one is picked at random per request.
func NewProxyRotator(proxies []string, userAgent string) *ProxyRotator {
	pr := &ProxyRotator{userAgent: userAgent}
	for _, p := range proxies {
		if u, ok := ParseProxy(p); ok {
			pr.proxies = append(pr.proxies, u)
		}
	}
	return pr
}

// -----------------------------------------------------------------------------

// Current returns the active proxy, or nil for a direct connection.
func (pr *ProxyRotator) Current() *url.URL {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if len(pr.proxies) == 0 {
		return nil
	}
	return pr.proxies[pr.index]
}

// -----------------------------------------------------------------------------

// Rotate advances to the next proxy and reports whether it changed.
func (pr *ProxyRotator) Rotate() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if len(pr.proxies) <= 1 {
		return false
	}
	pr.index = (pr.index + 1) % len(pr.proxies)
	return true
}

// -----------------------------------------------------------------------------

func (pr *ProxyRotator) Count() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return len(pr.proxies)
}

// -----------------------------------------------------------------------------

func (pr *ProxyRotator) UserAgent() string {
	if pr.userAgent != "" {
		return pr.userAgent
	}
	return defaultUserAgents[rand.Intn(len(defaultUserAgents))]
}

// -----------------------------------------------------------------------------

// ParseProxy accepts host:port or scheme://host:port with an http, https or
// socks5 scheme. A missing scheme defaults to http.
func ParseProxy(proxyStr string) (*url.URL, bool) {
	proxyStr = strings.TrimSpace(proxyStr)
	if proxyStr == "" {
		return nil, false
	}
	if !strings.Contains(proxyStr, "://") {
		proxyStr = "http://" + proxyStr
	}

	u, err := url.Parse(proxyStr)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, true
	default:
		return nil, false
	}
}
