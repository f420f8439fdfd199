// Package browser manages headless browser sessions for the strategies that
// need rendering: local, residential-proxied, and remote-CDP.
//
// Sessions are scoped: WithSession guarantees the underlying context and
// allocator are torn down on every exit path, including panics and
// cancellation. A bounded limiter gates concurrent contexts because each
// headless browser costs hundreds of megabytes.
package browser

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	cdpfetch "github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/config"
	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/docket-watch/acquire/internal/proxy"
	"github.com/docket-watch/acquire/internal/router"
)

// session is a live browser context plus its teardown chain.
type session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

func (s *session) close() {
	// Cancel in reverse order: context before allocator.
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// SessionManager acquires and releases browser contexts per strategy.
type SessionManager struct {
	cfg     *config.SessionConfig
	proxies *proxy.Pool
	slots   chan struct{}

	// newSession is swapped out in tests so the release invariant can be
	// verified without a real browser.
	newSession func(ctx context.Context, strategy router.Strategy) (*session, error)
}

// NewSessionManager creates a manager bounded to cfg.MaxBrowserContexts
// concurrent sessions.
func NewSessionManager(cfg *config.SessionConfig, proxies *proxy.Pool) *SessionManager {
	m := &SessionManager{
		cfg:     cfg,
		proxies: proxies,
		slots:   make(chan struct{}, cfg.MaxBrowserContexts),
	}
	m.newSession = m.launch
	return m
}

// WithSession runs fn inside a freshly acquired browser context. The context
// passed to fn carries the chromedp session; fn must not retain it. Release
// happens exactly once on every path: normal return, error, panic, or
// cancellation while waiting for a slot.
func (m *SessionManager) WithSession(ctx context.Context, strategy router.Strategy, fn func(ctx context.Context) error) error {
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		return errdefs.Timeout("cancelled waiting for a browser slot", ctx.Err())
	}
	defer func() { <-m.slots }()

	sess, err := m.newSession(ctx, strategy)
	if err != nil {
		return errdefs.Classify(err)
	}
	defer sess.close()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errdefs.Upstream(0, fmt.Sprintf("panic in browser session: %v", r), nil)
			}
		}()
		done <- fn(sess.ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// sess.close (deferred) tears the browser down, which aborts any
		// in-flight navigation inside fn.
		return errdefs.Timeout("browser session cancelled", ctx.Err())
	}
}

// launch builds the allocator and context for the strategy.
func (m *SessionManager) launch(ctx context.Context, strategy router.Strategy) (*session, error) {
	switch strategy {
	case router.BrowserRemoteCdp:
		return m.connectRemote(ctx)
	case router.BrowserResidentialProxy:
		return m.launchLocal(ctx, true)
	default:
		return m.launchLocal(ctx, false)
	}
}

func (m *SessionManager) launchLocal(ctx context.Context, proxied bool) (*session, error) {
	opts := allocatorOptions(m.cfg)

	var proxyEndpoint string
	if proxied {
		if m.proxies == nil {
			return nil, errdefs.ConfigurationMissing("residential proxy strategy selected but no proxy pool configured")
		}
		proxyEndpoint = m.proxies.Next()
		if proxyEndpoint == "" {
			return nil, errdefs.ConfigurationMissing("proxy pool has no endpoints")
		}
		opts = append(opts,
			chromedp.ProxyServer(proxyEndpoint),
			// Residential providers intercept TLS; certificate validation
			// must be relaxed or every page load fails.
			chromedp.Flag("ignore-certificate-errors", true),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	sess := &session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{allocCancel, browserCancel},
	}

	if proxied {
		m.answerProxyAuth(browserCtx, proxyEndpoint)
	}

	if m.cfg.Stealth {
		if err := chromedp.Run(browserCtx, applyStealth()); err != nil {
			sess.close()
			if proxied {
				m.proxies.MarkFailed(proxyEndpoint)
			}
			return nil, errdefs.Upstream(0, "browser launch failed", err)
		}
	} else {
		// Warm up so launch failures surface here instead of mid-navigation.
		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			sess.close()
			if proxied {
				m.proxies.MarkFailed(proxyEndpoint)
			}
			return nil, errdefs.Upstream(0, "browser launch failed", err)
		}
	}

	log.Debug().
		Bool("proxied", proxied).
		Str("proxy", proxyEndpoint).
		Msg("Browser session launched")

	return sess, nil
}

// connectRemote attaches to the pre-provisioned browser pool. A fresh random
// session identifier is appended to the WebSocket URL on every acquisition
// so the upstream pool cannot hand back a cached, possibly flagged session.
// If the remote already has a page target open it is reused instead of
// spawning another tab.
func (m *SessionManager) connectRemote(ctx context.Context) (*session, error) {
	wsURL, err := withSessionParam(m.cfg.RemoteCDPEndpoint)
	if err != nil {
		return nil, errdefs.ConfigurationMissing(fmt.Sprintf("invalid remote CDP endpoint: %v", err))
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, wsURL)

	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	infos, err := chromedp.Targets(probeCtx)
	if err != nil {
		probeCancel()
		allocCancel()
		return nil, errdefs.Upstream(0, "remote browser pool unreachable", err)
	}

	var existing target.ID
	for _, info := range infos {
		if info.Type == "page" && !strings.HasPrefix(info.URL, "devtools://") {
			existing = info.TargetID
			break
		}
	}

	if existing != "" {
		probeCancel()
		browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithTargetID(existing))
		log.Debug().Str("target", string(existing)).Msg("Reusing remote browsing context")
		return &session{
			ctx:     browserCtx,
			cancels: []context.CancelFunc{allocCancel, browserCancel},
		}, nil
	}

	// No usable target; the probe context owns a fresh tab already.
	log.Debug().Msg("Created remote browsing context")
	return &session{
		ctx:     probeCtx,
		cancels: []context.CancelFunc{allocCancel, probeCancel},
	}, nil
}

// answerProxyAuth services the proxy's auth challenges with per-session
// suffixed credentials (country pinning plus a random session id).
func (m *SessionManager) answerProxyAuth(browserCtx context.Context, endpoint string) {
	creds := m.cfg.Proxy
	if creds == nil || creds.Username == "" {
		return
	}
	username := proxy.SessionUsername(creds.Username, creds.Country)

	c := chromedp.FromContext(browserCtx)
	if c == nil {
		return
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *cdpfetch.EventAuthRequired:
			go func() {
				ectx := cdp.WithExecutor(browserCtx, c.Target)
				resp := &cdpfetch.AuthChallengeResponse{
					Response: cdpfetch.AuthChallengeResponseResponseProvideCredentials,
					Username: username,
					Password: creds.Password,
				}
				if err := cdpfetch.ContinueWithAuth(ev.RequestID, resp).Do(ectx); err != nil {
					log.Debug().Err(err).Msg("Proxy auth continuation failed")
					m.proxies.MarkFailed(endpoint)
				}
			}()
		case *cdpfetch.EventRequestPaused:
			go func() {
				ectx := cdp.WithExecutor(browserCtx, c.Target)
				if err := cdpfetch.ContinueRequest(ev.RequestID).Do(ectx); err != nil {
					log.Debug().Err(err).Msg("Request continuation failed")
				}
			}()
		}
	})

	// Enable the fetch domain with auth handling so the events above fire.
	go func() {
		if err := chromedp.Run(browserCtx, cdpfetch.Enable().WithHandleAuthRequests(true)); err != nil {
			log.Debug().Err(err).Msg("Failed to enable proxy auth handling")
		}
	}()
}

// applyStealth registers the evasion script to run before any page script on
// every new document in the session.
func applyStealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(StealthScript).Do(ctx)
		return err
	})
}

func allocatorOptions(cfg *config.SessionConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", randomViewport()),
		chromedp.UserAgent(cfg.UserAgent),
	}

	if path := FindChrome(cfg.ChromePath); path != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, opts...)
	}

	if cfg.BrowserHeadless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	return opts
}

// randomViewport picks a common desktop resolution so every session does not
// advertise the same fingerprint.
func randomViewport() string {
	viewports := []string{
		"1920,1080",
		"1536,864",
		"1440,900",
		"1366,768",
		"1600,900",
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(viewports))))
	if err != nil {
		return viewports[0]
	}
	return viewports[n.Int64()]
}

// withSessionParam appends a fresh random session identifier to the remote
// pool URL.
func withSessionParam(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("session", randomID())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
