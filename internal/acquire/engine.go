// Package acquire implements the acquisition engine: strategy dispatch,
// timeout and retry policy, challenge escalation, and parser invocation.
// The engine holds no mutable state across calls; everything it touches is
// either request-scoped or a read-only collaborator injected at startup.
package acquire

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/browser"
	"github.com/docket-watch/acquire/internal/clearance"
	"github.com/docket-watch/acquire/internal/config"
	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/docket-watch/acquire/internal/fetch"
	"github.com/docket-watch/acquire/internal/parsers"
	"github.com/docket-watch/acquire/internal/ratelimit"
	"github.com/docket-watch/acquire/internal/reqctx"
	"github.com/docket-watch/acquire/internal/retry"
	"github.com/docket-watch/acquire/internal/router"
	"github.com/docket-watch/acquire/internal/snapshot"
	"github.com/docket-watch/acquire/internal/solver"
	"github.com/docket-watch/acquire/pkg/models"
)

// Fetcher is the DirectHttp strategy dependency.
type Fetcher interface {
	Fetch(ctx context.Context, opts fetch.Options) (*models.RawContent, error)
}

// SessionRunner is the browser strategy dependency.
type SessionRunner interface {
	WithSession(ctx context.Context, strategy router.Strategy, fn func(ctx context.Context) error) error
}

// ChallengeSolver is the remote solving provider dependency.
type ChallengeSolver interface {
	Solve(ctx context.Context, task *solver.Task) (string, error)
}

// Engine orchestrates one acquisition per call and supports many concurrent
// calls.
type Engine struct {
	cfg       *config.SessionConfig
	registry  *router.Registry
	parsers   *parsers.Registry
	fetcher   Fetcher
	sessions  SessionRunner
	solver    ChallengeSolver
	limiter   *ratelimit.HostLimiter
	clearance *clearance.Store
	snapshots *snapshot.Archiver
	retryCfg  retry.Config

	// Browser primitives, swapped for stubs in tests.
	navigate func(ctx context.Context, url string, timeout time.Duration) (*models.RawContent, error)
	inject   func(ctx context.Context, kind solver.Kind, token string) error
	cookies  func(ctx context.Context) ([]*http.Cookie, error)
}

// New wires an Engine from its collaborators. snapshots may be nil.
func New(
	cfg *config.SessionConfig,
	registry *router.Registry,
	parserReg *parsers.Registry,
	fetcher Fetcher,
	sessions SessionRunner,
	challengeSolver ChallengeSolver,
	limiter *ratelimit.HostLimiter,
	clearanceStore *clearance.Store,
	snapshots *snapshot.Archiver,
) *Engine {
	return &Engine{
		cfg:       cfg,
		registry:  registry,
		parsers:   parserReg,
		fetcher:   fetcher,
		sessions:  sessions,
		solver:    challengeSolver,
		limiter:   limiter,
		clearance: clearanceStore,
		snapshots: snapshots,
		retryCfg: retry.Config{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			Multiplier:     cfg.BackoffMultiplier,
		},
		navigate: browser.Navigate,
		inject:   browser.InjectChallengeToken,
		cookies:  browser.Cookies,
	}
}

// Acquire fetches and normalizes one docket using the parser registered for
// the jurisdiction.
//
// On failure the returned record still carries the jurisdiction, identifier,
// and — when a network attempt was made — the source URL, so callers can log
// and re-queue without inspecting the error first. Found is always false on
// failure.
func (e *Engine) Acquire(ctx context.Context, jurisdiction, identifier string) (*models.NormalizedRecord, error) {
	return e.AcquireWithParser(ctx, jurisdiction, identifier, nil)
}

// AcquireWithParser is Acquire with an explicit parser override, used by
// callers that register experimental parsers without touching the shared
// registry.
func (e *Engine) AcquireWithParser(ctx context.Context, jurisdiction, identifier string, parser parsers.Parser) (*models.NormalizedRecord, error) {
	ctx = reqctx.WithRequestContext(ctx)
	rc := reqctx.Get(ctx)
	start := time.Now()

	j, registered := e.registry.Get(jurisdiction)

	record := &models.NormalizedRecord{
		Jurisdiction: j.Code,
		Identifier:   identifier,
	}

	if parser == nil {
		parser = e.parsers.Resolve(j.Code)
	}

	strategy, err := router.Resolve(j, e.cfg)
	if err != nil {
		// Fail fast: no resource acquired, no network call made.
		log.Warn().
			Str("request_id", rc.RequestID).
			Str("jurisdiction", j.Code).
			Err(err).
			Msg("Strategy resolution failed")
		return record, err
	}

	if j.URLTemplate == "" {
		return record, errdefs.ConfigurationMissing("jurisdiction " + j.Code + " has no docket URL template")
	}
	url := j.DocketURL(identifier)
	record.SourceURL = url

	log.Debug().
		Str("request_id", rc.RequestID).
		Str("jurisdiction", j.Code).
		Str("identifier", identifier).
		Str("strategy", strategy.String()).
		Bool("registered", registered).
		Msg("Acquisition started")

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, url); err != nil {
			return record, errdefs.Timeout("cancelled waiting for host rate gate", err)
		}
	}

	var raw *models.RawContent
	err = retry.Do(ctx, e.retryCfg, func() error {
		var attemptErr error
		raw, attemptErr = e.fetchOnce(ctx, strategy, j, identifier, url)
		return attemptErr
	})
	if err != nil {
		log.Debug().
			Str("request_id", rc.RequestID).
			Str("jurisdiction", j.Code).
			Err(err).
			Msg("Acquisition failed")
		return record, err
	}

	e.snapshots.Save(raw)

	rec, err := e.normalize(j, identifier, url, raw, parser)
	if err != nil {
		return record, err
	}
	rec.ResponseTimeMs = time.Since(start).Milliseconds()

	log.Info().
		Str("request_id", rc.RequestID).
		Str("jurisdiction", j.Code).
		Str("identifier", identifier).
		Bool("found", rec.Found).
		Int64("elapsed_ms", rec.ResponseTimeMs).
		Msg("Acquisition completed")

	return rec, nil
}

// fetchOnce performs one attempt: fetch (or navigate), runtime challenge
// detection, and at most one solver escalation.
func (e *Engine) fetchOnce(ctx context.Context, strategy router.Strategy, j router.Jurisdiction, identifier, url string) (*models.RawContent, error) {
	if strategy == router.DirectHttp {
		raw, err := e.fetchDirect(ctx, j, identifier, url)
		if err != nil {
			return nil, err
		}
		// Upstream sites add challenges without notice; a strategy that was
		// plain HTTP yesterday may hit an interstitial today.
		if kind, challenged := solver.DetectChallenge(raw.Body, raw.FinalURL, j.ChallengeMarkers); challenged {
			log.Debug().
				Str("jurisdiction", j.Code).
				Str("kind", string(kind)).
				Msg("Challenge detected on direct fetch, escalating to browser")
			return e.fetchBrowser(ctx, router.BrowserChallengeAssisted, j, identifier, url)
		}
		return raw, nil
	}
	return e.fetchBrowser(ctx, strategy, j, identifier, url)
}

func (e *Engine) fetchDirect(ctx context.Context, j router.Jurisdiction, identifier, url string) (*models.RawContent, error) {
	opts := fetch.Options{
		URL:          url,
		Timeout:      e.cfg.HTTPTimeout,
		Jurisdiction: j.Code,
		Identifier:   identifier,
	}
	if cookies, ua, ok := e.clearanceFor(j.Code); ok {
		opts.Cookies = cookies
		opts.UserAgent = ua
	}
	return e.fetcher.Fetch(ctx, opts)
}

// fetchBrowser runs one browser attempt inside a scoped session. Challenge
// escalation happens inside the session because token injection needs the
// live page.
func (e *Engine) fetchBrowser(ctx context.Context, strategy router.Strategy, j router.Jurisdiction, identifier, url string) (*models.RawContent, error) {
	var raw *models.RawContent

	err := e.sessions.WithSession(ctx, strategy, func(sctx context.Context) error {
		var navErr error
		raw, navErr = e.navigate(sctx, url, e.cfg.NavigationTimeout)
		if navErr != nil {
			return navErr
		}

		kind, challenged := solver.DetectChallenge(raw.Body, raw.FinalURL, j.ChallengeMarkers)
		if !challenged {
			return nil
		}

		solved, solveErr := e.solveChallenge(ctx, sctx, kind, j, url)
		if solveErr != nil {
			return solveErr
		}
		raw = solved
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw.Jurisdiction = j.Code
	raw.Identifier = identifier
	return raw, nil
}

// solveChallenge drives one escalation: solve remotely, inject the token,
// re-navigate, and verify the challenge route was left. A page still on the
// challenge route after injection is a permanent failure for this attempt —
// re-running the solver against a stuck page just burns provider credit.
func (e *Engine) solveChallenge(ctx, sctx context.Context, kind solver.Kind, j router.Jurisdiction, url string) (*models.RawContent, error) {
	if e.solver == nil {
		return nil, errdefs.ConfigurationMissing("challenge detected but no solver is configured")
	}

	// The page being challenged may differ from what the router predicted;
	// re-read the current document for the site key.
	current, err := e.navigate(sctx, url, e.cfg.NavigationTimeout)
	if err != nil {
		return nil, err
	}

	siteKey := j.SiteKey
	if siteKey == "" {
		siteKey = solver.ExtractSiteKey(current.Body)
	}
	if siteKey == "" {
		return nil, errdefs.ChallengeUnsolved("challenge page exposes no site key")
	}

	task := &solver.Task{
		SiteURL: url,
		SiteKey: siteKey,
		Kind:    kind,
		State:   solver.StateCreated,
	}
	token, err := e.solver.Solve(ctx, task)
	if err != nil {
		return nil, err
	}

	if err := e.inject(sctx, kind, token); err != nil {
		return nil, err
	}

	raw, err := e.navigate(sctx, url, e.cfg.NavigationTimeout)
	if err != nil {
		return nil, err
	}
	if _, still := solver.DetectChallenge(raw.Body, raw.FinalURL, j.ChallengeMarkers); still {
		return nil, errdefs.ChallengeUnsolved("page still on challenge route after token injection")
	}

	// The clearance cookies earned here let the next request to this site
	// skip the solver.
	if e.clearance != nil && e.cookies != nil {
		if cookies, cookieErr := e.cookies(sctx); cookieErr == nil {
			e.clearance.Set(j.Code, cookies, e.cfg.UserAgent)
		}
	}

	return raw, nil
}

func (e *Engine) clearanceFor(code string) ([]*http.Cookie, string, bool) {
	if e.clearance == nil {
		return nil, "", false
	}
	return e.clearance.Get(code)
}

// normalize merges the parser's partial record into the canonical shape.
// Parser panics and errors surface as ParseError; upstream "no results"
// pages yield found=false with no error.
func (e *Engine) normalize(j router.Jurisdiction, identifier, url string, raw *models.RawContent, parser parsers.Parser) (*models.NormalizedRecord, error) {
	record := &models.NormalizedRecord{
		Jurisdiction: j.Code,
		Identifier:   identifier,
		SourceURL:    url,
		FetchedAt:    raw.FetchedAt,
	}

	if matchesNotFound(raw.Body, j.NotFoundMarkers) {
		return record, nil
	}

	partial, err := parsers.Safe(parser)(raw)
	if err != nil {
		return nil, errdefs.Parse(err)
	}
	if partial == nil || partial.NotFound {
		return record, nil
	}

	record.Found = true
	record.Title = partial.Title
	record.OrganizationName = partial.OrganizationName
	record.FiledDate = partial.FiledDate
	record.Status = partial.Status
	record.Category = partial.Category
	record.Extra = partial.Extra
	return record, nil
}
