package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/docket-watch/acquire/internal/solver"
	"github.com/docket-watch/acquire/pkg/models"
)

// settleDelay lets initial scripts run after DOMContentLoaded before the
// document is captured.
const settleDelay = 500 * time.Millisecond

// Navigate loads a URL in the session and captures the rendered document.
// The timeout bounds the whole operation; expiry maps to Timeout.
func Navigate(sessionCtx context.Context, rawURL string, timeout time.Duration) (*models.RawContent, error) {
	start := time.Now()

	navCtx, cancel := context.WithTimeout(sessionCtx, timeout)
	defer cancel()

	raw := &models.RawContent{
		URL:     rawURL,
		Headers: make(map[string]string),
	}

	var statusCode int64
	chromedp.ListenTarget(navCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument {
				statusCode = resp.Response.Status
				for key, value := range resp.Response.Headers {
					if s, ok := value.(string); ok {
						raw.Headers[key] = s
					}
				}
			}
		}
	})

	var html, finalURL string
	err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.Sleep(settleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if navCtx.Err() != nil {
			return nil, errdefs.Timeout("navigation timed out", err)
		}
		return nil, errdefs.Upstream(0, "navigation failed", err)
	}

	raw.FinalURL = finalURL
	raw.StatusCode = int(statusCode)
	raw.Body = html
	raw.FetchedAt = time.Now()
	raw.ResponseTime = time.Since(start).Milliseconds()

	log.Debug().
		Str("url", rawURL).
		Int("status", raw.StatusCode).
		Int64("response_time_ms", raw.ResponseTime).
		Msg("Navigation completed")

	return raw, nil
}

// InjectChallengeToken writes a solved token into the page's hidden response
// field(s), invokes the widget callback when one is registered, and submits
// the enclosing form. The engine re-navigates afterwards and verifies the
// challenge route was actually left.
func InjectChallengeToken(sessionCtx context.Context, kind solver.Kind, token string) error {
	field := "cf-turnstile-response"
	if kind == solver.KindRecaptchaV2 {
		field = "g-recaptcha-response"
	}

	script := fmt.Sprintf(`(function() {
		var token = %q;
		var injected = false;
		document.querySelectorAll('[name=%q], textarea[id^=%q]').forEach(function(el) {
			el.value = token;
			injected = true;
		});
		if (window.tsCallback) { try { window.tsCallback(token); } catch (e) {} }
		if (window.___grecaptcha_cfg) {
			try {
				Object.values(window.___grecaptcha_cfg.clients || {}).forEach(function(client) {
					Object.values(client).forEach(function(v) {
						if (v && typeof v === 'object' && typeof v.callback === 'function') {
							v.callback(token);
						}
					});
				});
			} catch (e) {}
		}
		var form = document.querySelector('form');
		if (injected && form) { form.submit(); }
		return injected;
	})()`, token, field, field)

	var injected bool
	if err := chromedp.Run(sessionCtx, chromedp.Evaluate(script, &injected)); err != nil {
		return errdefs.Upstream(0, "token injection failed", err)
	}
	if !injected {
		return errdefs.ChallengeUnsolved("no challenge response field found on page")
	}

	// Give the submit a moment before the engine re-navigates.
	return chromedp.Run(sessionCtx, chromedp.Sleep(settleDelay))
}

// Cookies returns the session's cookies for the clearance cache. Only
// security-relevant cookies are kept; analytics noise is dropped.
func Cookies(sessionCtx context.Context) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	err := chromedp.Run(sessionCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cdpCookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cdpCookies {
			if !keepCookie(c.Name) {
				continue
			}
			cookies = append(cookies, &http.Cookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
				Path:   c.Path,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, errdefs.Upstream(0, "cookie capture failed", err)
	}
	return cookies, nil
}

func keepCookie(name string) bool {
	prefixes := []string{"cf_", "__cf", "_cfuvid", "ASP.NET_", "JSESSIONID", "PHPSESSID", "incap_", "visid_"}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
