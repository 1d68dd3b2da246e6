// Package proxy handles proxy selection and health checking for downloads.
package proxy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/url"
	"strings"
	"time"

	"grabtube/internal/errs"
)

const (
	defaultSOCKSPort = "1080"
	defaultHTTPPort  = "8080"
)

// Manager hands out healthy proxies for download requests.
type Manager struct {
	proxies       []string
	healthCheck   bool
	healthTimeout time.Duration
}

// New creates a new proxy manager from an already-parsed proxy list.
func New(proxies []string, healthCheck bool, healthTimeout time.Duration) (*Manager, error) {
	cleaned := make([]string, 0, len(proxies))

	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if _, err := url.Parse(p); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", p, err)
		}

		cleaned = append(cleaned, p)
	}

	return &Manager{
		proxies:       cleaned,
		healthCheck:   healthCheck,
		healthTimeout: healthTimeout,
	}, nil
}

// GetProxy returns a random healthy proxy URL, or empty string if no proxies configured.
func (m *Manager) GetProxy(ctx context.Context) (string, error) {
	if len(m.proxies) == 0 {
		return "", nil
	}

	if !m.healthCheck {
		return m.selectRandom(), nil
	}

	// Shuffle and try each once.
	for _, idx := range rand.Perm(len(m.proxies)) {
		proxy := m.proxies[idx]
		if m.checkHealth(ctx, proxy) {
			return proxy, nil
		}
	}

	return "", errs.ErrNoProxiesAvailable
}

func (m *Manager) selectRandom() string {
	if len(m.proxies) == 0 {
		return ""
	}

	return m.proxies[rand.IntN(len(m.proxies))]
}

// checkHealth attempts a TCP connection to the proxy endpoint.
func (m *Manager) checkHealth(ctx context.Context, proxyURL string) bool {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return false
	}

	host := u.Host
	if !strings.Contains(host, ":") {
		switch u.Scheme {
		case "socks5", "socks5h":
			host = host + ":" + defaultSOCKSPort
		case "http", "https":
			host = host + ":" + defaultHTTPPort
		default:
			return false
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	dialer := &net.Dialer{}

	conn, err := dialer.DialContext(checkCtx, "tcp", host)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

// Count returns the number of configured proxies.
func (m *Manager) Count() int {
	return len(m.proxies)
}
