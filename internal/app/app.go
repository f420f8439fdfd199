// Package app provides application initialization and lifecycle management.
package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/acquire"
	"github.com/docket-watch/acquire/internal/browser"
	"github.com/docket-watch/acquire/internal/clearance"
	"github.com/docket-watch/acquire/internal/config"
	"github.com/docket-watch/acquire/internal/fetch"
	"github.com/docket-watch/acquire/internal/parsers"
	"github.com/docket-watch/acquire/internal/proxy"
	"github.com/docket-watch/acquire/internal/ratelimit"
	"github.com/docket-watch/acquire/internal/router"
	"github.com/docket-watch/acquire/internal/snapshot"
	"github.com/docket-watch/acquire/internal/solver"
)

// Application holds all dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure resource cleanup on shutdown.
type Application struct {
	Config    *config.SessionConfig
	Logger    *zerolog.Logger
	Registry  *router.Registry
	Parsers   *parsers.Registry
	Engine    *acquire.Engine
	Snapshots *snapshot.Archiver
	startTime time.Time
}

// New wires the full dependency graph from a loaded configuration.
//
// Initialization is cheap: no browser launches, no network calls. Browsers
// are launched per acquisition by the session manager, and the solver client
// only talks to its provider when a challenge is actually hit. A startup
// warning is logged for each jurisdiction whose strategy cannot run under
// the current configuration, so misconfiguration surfaces before the first
// request instead of inside it.
func New(cfg *config.SessionConfig) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	registry := router.NewRegistry()
	parserReg := parsers.NewRegistry()

	var proxies *proxy.Pool
	if cfg.HasProxy() {
		proxies = proxy.NewPool(cfg.Proxy.Endpoints)
		logger.Debug().
			Int("endpoints", len(cfg.Proxy.Endpoints)).
			Str("country", cfg.Proxy.Country).
			Msg("Residential proxy pool initialized")
	}

	sessions := browser.NewSessionManager(cfg, proxies)

	var challengeSolver acquire.ChallengeSolver
	if cfg.HasSolver() {
		challengeSolver = solver.NewClient(cfg.SolverEndpoint, cfg.SolverAPIKey, cfg.SolverPollInterval, cfg.SolverMaxPolls)
		logger.Debug().Str("endpoint", cfg.SolverEndpoint).Msg("Challenge solver client initialized")
	}

	limiter := ratelimit.NewHostLimiter(cfg.HostInterval, cfg.HostBurst)
	clearanceStore := clearance.NewStore(cfg.ClearanceTTL)
	fetcher := fetch.New(cfg.HTTPTimeout, cfg.UserAgent, cfg.InsecureTLS)

	snapshots, err := snapshot.NewArchiver(cfg.SnapshotDir, 0)
	if err != nil {
		return nil, fmt.Errorf("init snapshot archiver: %w", err)
	}

	engine := acquire.New(
		cfg,
		registry,
		parserReg,
		fetcher,
		sessions,
		challengeSolver,
		limiter,
		clearanceStore,
		snapshots,
	)

	for _, warning := range router.MissingRequirements(registry, cfg) {
		logger.Warn().Msg(warning)
	}

	logger.Debug().
		Int("jurisdictions", registry.Len()).
		Bool("solver", cfg.HasSolver()).
		Msg("Application initialized")

	return &Application{
		Config:    cfg,
		Logger:    &logger,
		Registry:  registry,
		Parsers:   parserReg,
		Engine:    engine,
		Snapshots: snapshots,
		startTime: time.Now(),
	}, nil
}

// Close drains the snapshot queue and releases resources. Browser sessions
// are scoped per acquisition so there is no pool to tear down.
func (a *Application) Close() error {
	a.Snapshots.Close()
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

func initLogger(cfg *config.SessionConfig) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer
	if cfg.JSONLog {
		writer = os.Stderr
	} else {
		writer = zerolog.NewConsoleWriter()
	}

	logger := log.Output(writer).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
