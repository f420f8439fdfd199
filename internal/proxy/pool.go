// Package proxy manages residential proxy endpoints: rotation with failure
// cooldown, and per-session credential suffixing for country pinning.
package proxy

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const failureCooldown = 5 * time.Minute

// Pool manages a list of proxy endpoints with rotation and health tracking.
type Pool struct {
	endpoints []string
	index     int
	mu        sync.Mutex
	failed    map[string]time.Time
}

// NewPool creates a Pool over the configured endpoints.
func NewPool(endpoints []string) *Pool {
	return &Pool{
		endpoints: endpoints,
		failed:    make(map[string]time.Time),
	}
}

// Next returns the next healthy endpoint, skipping ones that failed within
// the cooldown window. When every endpoint is cooling down the current one
// is returned anyway rather than stalling the caller.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.endpoints) == 0 {
		return ""
	}

	start := p.index
	for {
		endpoint := p.endpoints[p.index]
		p.index = (p.index + 1) % len(p.endpoints)

		if failTime, ok := p.failed[endpoint]; ok {
			if time.Since(failTime) < failureCooldown {
				if p.index == start {
					return endpoint
				}
				continue
			}
			delete(p.failed, endpoint)
		}

		return endpoint
	}
}

// MarkFailed puts an endpoint on cooldown.
func (p *Pool) MarkFailed(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[endpoint] = time.Now()
}

// MarkHealthy clears an endpoint's failure status.
func (p *Pool) MarkHealthy(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, endpoint)
}

// SessionUsername builds the per-request proxy username. Residential
// providers encode routing in the username: country pinning plus a random
// session id so consecutive requests egress from different residential IPs.
func SessionUsername(username, country string) string {
	if country == "" {
		country = "us"
	}
	return fmt.Sprintf("%s-country-%s-session-%s", username, country, randomID(6))
}

func randomID(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
