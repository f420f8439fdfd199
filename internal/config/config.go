// Package config loads the process-wide session configuration.
//
// All scraper, browser, proxy, and solver settings are resolved exactly once
// at startup into an immutable SessionConfig that is passed by reference.
// Nothing re-reads the environment mid-request.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// ProxyCredentials describes a residential proxy account. The username is
// suffixed per session with country pinning and a random session id, so the
// raw values here are never sent on the wire unmodified.
type ProxyCredentials struct {
	Endpoints []string
	Username  string
	Password  string
	Country   string
}

// SessionConfig holds every runtime setting the acquisition engine needs.
// It is read-only after Load returns.
type SessionConfig struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP
	UserAgent   string
	HTTPTimeout time.Duration
	InsecureTLS bool

	// Browser
	NavigationTimeout  time.Duration
	MaxBrowserContexts int
	BrowserHeadless    bool
	ChromePath         string
	Stealth            bool
	RemoteCDPEndpoint  string

	// Proxy (nil when no residential proxy is configured)
	Proxy *ProxyCredentials

	// Challenge solver
	SolverEndpoint     string
	SolverAPIKey       string
	SolverPollInterval time.Duration
	SolverMaxPolls     int

	// Retry
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	// Per-host throttling
	HostInterval time.Duration
	HostBurst    int

	// Clearance cookie cache
	ClearanceTTL time.Duration

	// Snapshot archive (empty disables archiving)
	SnapshotDir string
}

// HasProxy reports whether residential proxy credentials are configured.
func (c *SessionConfig) HasProxy() bool {
	return c.Proxy != nil && len(c.Proxy.Endpoints) > 0 && c.Proxy.Username != ""
}

// HasRemoteCDP reports whether a shared remote browser pool is configured.
func (c *SessionConfig) HasRemoteCDP() bool {
	return c.RemoteCDPEndpoint != ""
}

// HasSolver reports whether a challenge-solving provider key is configured.
func (c *SessionConfig) HasSolver() bool {
	return c.SolverAPIKey != ""
}

// Load builds a SessionConfig from defaults, environment variables, and CLI
// flags, in that order of precedence. The caller passes the root command so
// flags can be read; cmd may be nil in tests.
func Load(cmd *cobra.Command) (*SessionConfig, error) {
	cfg := &SessionConfig{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		UserAgent:          DefaultUserAgent,
		HTTPTimeout:        DefaultHTTPTimeout,
		NavigationTimeout:  DefaultNavigationTimeout,
		MaxBrowserContexts: DefaultMaxBrowserContexts,
		BrowserHeadless:    DefaultBrowserHeadless,
		Stealth:            true,
		SolverEndpoint:     DefaultSolverEndpoint,
		SolverPollInterval: DefaultSolverPollInterval,
		SolverMaxPolls:     DefaultSolverMaxPolls,
		MaxAttempts:        DefaultMaxAttempts,
		InitialBackoff:     DefaultInitialBackoff,
		MaxBackoff:         DefaultMaxBackoff,
		BackoffMultiplier:  DefaultBackoffMultiplier,
		HostInterval:       DefaultHostInterval,
		HostBurst:          DefaultHostBurst,
		ClearanceTTL:       DefaultClearanceTTL,
	}

	applyEnv(cfg)

	if cmd != nil {
		applyFlags(cfg, cmd)
	}

	// Secrets fall back to the OS keyring when neither env nor flags set them
	if cfg.SolverAPIKey == "" {
		cfg.SolverAPIKey = secretFromKeyring(keyringSolverKey)
	}
	if cfg.Proxy != nil && cfg.Proxy.Password == "" {
		cfg.Proxy.Password = secretFromKeyring(keyringProxyPassword)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *SessionConfig) {
	if v := os.Getenv("DOCKETWATCH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("DOCKETWATCH_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("DOCKETWATCH_REMOTE_CDP"); v != "" {
		cfg.RemoteCDPEndpoint = v
	}
	if v := os.Getenv("DOCKETWATCH_SOLVER_ENDPOINT"); v != "" {
		cfg.SolverEndpoint = v
	}
	if v := os.Getenv("DOCKETWATCH_SOLVER_KEY"); v != "" {
		cfg.SolverAPIKey = v
	}
	if v := os.Getenv("DOCKETWATCH_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	if v := os.Getenv("DOCKETWATCH_INSECURE_TLS"); v != "" {
		cfg.InsecureTLS = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DOCKETWATCH_MAX_CONTEXTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBrowserContexts = n
		}
	}

	if eps := os.Getenv("DOCKETWATCH_PROXY_ENDPOINTS"); eps != "" {
		p := &ProxyCredentials{
			Endpoints: splitAndTrim(eps),
			Username:  os.Getenv("DOCKETWATCH_PROXY_USER"),
			Password:  os.Getenv("DOCKETWATCH_PROXY_PASS"),
			Country:   DefaultProxyCountry,
		}
		if c := os.Getenv("DOCKETWATCH_PROXY_COUNTRY"); c != "" {
			p.Country = strings.ToLower(c)
		}
		cfg.Proxy = p
	}
}

func applyFlags(cfg *SessionConfig, cmd *cobra.Command) {
	flags := cmd.Flags()

	if f := flags.Lookup("user-agent"); f != nil && f.Changed {
		cfg.UserAgent = f.Value.String()
	}
	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		if d, err := time.ParseDuration(f.Value.String()); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if f := flags.Lookup("solver-key"); f != nil && f.Changed {
		cfg.SolverAPIKey = f.Value.String()
	}
	if f := flags.Lookup("remote-cdp"); f != nil && f.Changed {
		cfg.RemoteCDPEndpoint = f.Value.String()
	}
	if f := flags.Lookup("snapshot-dir"); f != nil && f.Changed {
		cfg.SnapshotDir = f.Value.String()
	}
	if f := flags.Lookup("headful"); f != nil && f.Value.String() == "true" {
		cfg.BrowserHeadless = false
	}
	if f := flags.Lookup("no-stealth"); f != nil && f.Value.String() == "true" {
		cfg.Stealth = false
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
