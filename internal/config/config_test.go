package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CI", "1") // keep the keyring out of it

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d", cfg.MaxAttempts)
	}
	if cfg.MaxBrowserContexts != DefaultMaxBrowserContexts {
		t.Errorf("MaxBrowserContexts = %d", cfg.MaxBrowserContexts)
	}
	if !cfg.Stealth {
		t.Error("Stealth should default on")
	}
	if cfg.HasSolver() || cfg.HasProxy() || cfg.HasRemoteCDP() {
		t.Error("Bare environment should configure no optional capability")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CI", "1")
	t.Setenv("DOCKETWATCH_SOLVER_KEY", "k-123")
	t.Setenv("DOCKETWATCH_REMOTE_CDP", "ws://pool.internal:9222")
	t.Setenv("DOCKETWATCH_USER_AGENT", "custom-ua")
	t.Setenv("DOCKETWATCH_MAX_CONTEXTS", "5")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.HasSolver() || cfg.SolverAPIKey != "k-123" {
		t.Error("Solver key not picked up from environment")
	}
	if !cfg.HasRemoteCDP() {
		t.Error("Remote CDP endpoint not picked up")
	}
	if cfg.UserAgent != "custom-ua" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.MaxBrowserContexts != 5 {
		t.Errorf("MaxBrowserContexts = %d", cfg.MaxBrowserContexts)
	}
}

func TestLoadProxyFromEnv(t *testing.T) {
	t.Setenv("CI", "1")
	t.Setenv("DOCKETWATCH_PROXY_ENDPOINTS", "http://p1.example:8000, http://p2.example:8000")
	t.Setenv("DOCKETWATCH_PROXY_USER", "acct")
	t.Setenv("DOCKETWATCH_PROXY_PASS", "pw")
	t.Setenv("DOCKETWATCH_PROXY_COUNTRY", "GB")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.HasProxy() {
		t.Fatal("Proxy should be configured")
	}
	if len(cfg.Proxy.Endpoints) != 2 {
		t.Errorf("Endpoints = %v", cfg.Proxy.Endpoints)
	}
	if cfg.Proxy.Country != "gb" {
		t.Errorf("Country = %q, want lowercased gb", cfg.Proxy.Country)
	}
}

func TestLoadRejectsBadRemoteCDP(t *testing.T) {
	t.Setenv("CI", "1")
	t.Setenv("DOCKETWATCH_REMOTE_CDP", "http://not-a-websocket:9222")

	if _, err := Load(nil); err == nil {
		t.Error("Non-ws remote CDP endpoint should fail validation")
	}
}

func TestValidateBounds(t *testing.T) {
	base := func() *SessionConfig {
		return &SessionConfig{
			HTTPTimeout:        time.Second,
			NavigationTimeout:  time.Second,
			MaxAttempts:        1,
			BackoffMultiplier:  2,
			MaxBrowserContexts: 1,
			SolverMaxPolls:     1,
			SolverPollInterval: time.Second,
		}
	}

	if err := validate(base()); err != nil {
		t.Fatalf("Baseline config should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{"zero http timeout", func(c *SessionConfig) { c.HTTPTimeout = 0 }},
		{"zero attempts", func(c *SessionConfig) { c.MaxAttempts = 0 }},
		{"multiplier below one", func(c *SessionConfig) { c.BackoffMultiplier = 0.5 }},
		{"too many contexts", func(c *SessionConfig) { c.MaxBrowserContexts = MaxBrowserContexts + 1 }},
		{"zero polls", func(c *SessionConfig) { c.SolverMaxPolls = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}
