// Package ratelimit throttles request rate per upstream host. Hammering a
// state commission's site is the fastest way to get a datacenter IP range
// blocked, so every acquisition waits on the host's token bucket first.
package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum interval between requests to the same host
// using a token bucket per host.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter that allows one request per minInterval
// to each host, with the given burst capacity.
func NewHostLimiter(minInterval time.Duration, burst int) *HostLimiter {
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Every(minInterval),
		burst:    burst,
	}
}

// Wait blocks until a request to the URL's host may proceed, or until ctx is
// cancelled.
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := extractHost(urlStr)
	if host == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}
	return hl.getLimiter(host).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (hl *HostLimiter) Allow(urlStr string) bool {
	host := extractHost(urlStr)
	if host == "" {
		return true
	}
	return hl.getLimiter(host).Allow()
}

// SetLimit overrides the interval for one host, for sites that tolerate less.
func (hl *HostLimiter) SetLimit(host string, minInterval time.Duration, burst int) {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	if limiter, exists := hl.limiters[host]; exists {
		limiter.SetLimit(rate.Every(minInterval))
		limiter.SetBurst(burst)
		return
	}
	hl.limiters[host] = rate.NewLimiter(rate.Every(minInterval), burst)
}

func (hl *HostLimiter) getLimiter(host string) *rate.Limiter {
	hl.mu.RLock()
	limiter, exists := hl.limiters[host]
	hl.mu.RUnlock()
	if exists {
		return limiter
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	// Double-check after acquiring write lock
	if limiter, exists := hl.limiters[host]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = limiter
	return limiter
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
