package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
)

func TestFetchBasicPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("Expected User-Agent test-agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Docket 44280</body></html>"))
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	raw, err := f.Fetch(context.Background(), Options{
		URL:          server.URL,
		Jurisdiction: "GA",
		Identifier:   "44280",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if raw.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", raw.StatusCode)
	}
	if raw.Body != "<html><body>Docket 44280</body></html>" {
		t.Errorf("Unexpected body: %q", raw.Body)
	}
	if raw.Jurisdiction != "GA" || raw.Identifier != "44280" {
		t.Error("Jurisdiction/Identifier should be echoed into the raw content")
	}
	if raw.Headers["Content-Type"] != "text/html" {
		t.Errorf("Headers not captured: %v", raw.Headers)
	}
}

func TestFetchNon2xxReturnsTypedErrorAndRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	raw, err := f.Fetch(context.Background(), Options{URL: server.URL})

	var e *errdefs.Error
	if !errors.As(err, &e) || e.Kind != errdefs.KindUpstream || e.Status != 503 {
		t.Fatalf("Expected Upstream(503), got %v", err)
	}
	if !e.Transient() {
		t.Error("503 should classify as transient")
	}
	// The raw content still comes back so callers keep the source URL.
	if raw == nil || raw.StatusCode != 503 {
		t.Error("Raw content should accompany the upstream error")
	}
}

func TestFetchForbiddenIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	_, err := f.Fetch(context.Background(), Options{URL: server.URL})

	var e *errdefs.Error
	if !errors.As(err, &e) || e.Status != 403 {
		t.Fatalf("Expected Upstream(403), got %v", err)
	}
	if e.Transient() {
		t.Error("403 should not be retried")
	}
}

func TestFetchTimeoutClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	_, err := f.Fetch(context.Background(), Options{
		URL:     server.URL,
		Timeout: 30 * time.Millisecond,
	})
	if !errdefs.IsKind(err, errdefs.KindTimeout) {
		t.Errorf("Expected Timeout, got %v", err)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	raw, err := f.Fetch(context.Background(), Options{URL: server.URL + "/start"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if raw.FinalURL != server.URL+"/final" {
		t.Errorf("FinalURL = %q, want the redirect target", raw.FinalURL)
	}
	if raw.URL != server.URL+"/start" {
		t.Errorf("URL should keep the requested address, got %q", raw.URL)
	}
}

func TestFetchSendsInjectedCookies(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("cf_clearance"); err == nil {
			got = c.Value
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(5*time.Second, "test-agent", false)
	_, err := f.Fetch(context.Background(), Options{
		URL:     server.URL,
		Cookies: []*http.Cookie{{Name: "cf_clearance", Value: "tok123"}},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != "tok123" {
		t.Errorf("Clearance cookie not sent, got %q", got)
	}
}
