// Package clearance caches challenge-clearance cookies per jurisdiction.
//
// Once a Turnstile or reCAPTCHA interstitial has been solved inside a
// browser session, the clearance cookies (cf_clearance and friends) stay
// valid for a while. Reusing them lets subsequent requests to the same site
// skip the solver entirely.
package clearance

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type entry struct {
	cookies   []*http.Cookie
	userAgent string
	expiresAt time.Time
}

// Store is an in-memory TTL cache keyed by jurisdiction code.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// NewStore creates a clearance store with the given entry lifetime.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Set records the clearance cookies captured after a solved challenge.
// The user agent is stored with them because clearance cookies are bound to
// the UA that earned them.
func (s *Store) Set(jurisdiction string, cookies []*http.Cookie, userAgent string) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jurisdiction] = entry{
		cookies:   cookies,
		userAgent: userAgent,
		expiresAt: time.Now().Add(s.ttl),
	}
	log.Debug().
		Str("jurisdiction", jurisdiction).
		Int("cookies", len(cookies)).
		Msg("Clearance cookies stored")
}

// Get returns the cached cookies and their user agent, or ok=false when no
// unexpired entry exists. Expired entries are removed lazily.
func (s *Store) Get(jurisdiction string) (cookies []*http.Cookie, userAgent string, ok bool) {
	s.mu.RLock()
	e, exists := s.entries[jurisdiction]
	s.mu.RUnlock()

	if !exists {
		return nil, "", false
	}
	if time.Now().After(e.expiresAt) {
		s.Delete(jurisdiction)
		return nil, "", false
	}
	return e.cookies, e.userAgent, true
}

// Delete drops the entry for a jurisdiction, used when a cached clearance
// turns out to be stale (site re-challenged despite the cookies).
func (s *Store) Delete(jurisdiction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jurisdiction)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	now := time.Now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
