// Package fetch implements the DirectHttp strategy: one GET with
// redirect-following, mapped into the acquisition error taxonomy. Retries
// are the engine's responsibility, never this package's.
package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/docket-watch/acquire/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const maxBodyBytes = 8 << 20 // state docket pages are small; anything bigger is wrong

// Options configures a single fetch.
type Options struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
	// Cookies are injected before the request, typically cached clearance
	// cookies for the target site.
	Cookies []*http.Cookie
	// UserAgent overrides the fetcher default, used when replaying clearance
	// cookies that are bound to the browser UA that earned them.
	UserAgent string

	// Jurisdiction/Identifier are echoed into the RawContent so parsers can
	// see what was asked for.
	Jurisdiction string
	Identifier   string
}

// Fetcher performs direct HTTP requests with connection reuse.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher. TLS verification is relaxed only when the config
// demands it (proxy TLS interception).
func New(timeout time.Duration, userAgent string, insecureTLS bool) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			Jar:       jar,
		},
		userAgent: userAgent,
	}
}

// Fetch performs one GET and returns the page, or a typed acquisition error.
// Non-2xx responses map to UpstreamError(status); deadline expiry maps to
// Timeout. Redirects are followed; the final URL is recorded.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) (*models.RawContent, error) {
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("jurisdiction", opts.Jurisdiction).
		Msg("Direct fetch")

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, errdefs.Upstream(0, "invalid request", err)
	}

	ua := f.userAgent
	if opts.UserAgent != "" {
		ua = opts.UserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	if len(opts.Cookies) > 0 {
		if u, err := url.Parse(opts.URL); err == nil && f.client.Jar != nil {
			f.client.Jar.SetCookies(u, opts.Cookies)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errdefs.Classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errdefs.Classify(err)
	}

	raw := &models.RawContent{
		Jurisdiction: opts.Jurisdiction,
		Identifier:   opts.Identifier,
		URL:          opts.URL,
		FinalURL:     resp.Request.URL.String(),
		StatusCode:   resp.StatusCode,
		Body:         string(body),
		Headers:      flattenHeaders(resp.Header),
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().
			Str("url", opts.URL).
			Int("status", resp.StatusCode).
			Msg("Upstream returned non-2xx")
		return raw, errdefs.Upstream(resp.StatusCode, "upstream rejected request", nil)
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", raw.ResponseTime).
		Msg("Direct fetch completed")

	return raw, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
