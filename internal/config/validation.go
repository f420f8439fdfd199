package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validate(c *SessionConfig) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1")
	}
	if c.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff multiplier must be >= 1")
	}
	if c.MaxBrowserContexts <= 0 || c.MaxBrowserContexts > MaxBrowserContexts {
		return fmt.Errorf("max browser contexts must be between 1 and %d", MaxBrowserContexts)
	}
	if c.SolverMaxPolls < 1 {
		return fmt.Errorf("solver max polls must be >= 1")
	}
	if c.SolverPollInterval <= 0 {
		return fmt.Errorf("solver poll interval must be > 0")
	}
	if c.HostInterval < 0 {
		return fmt.Errorf("host interval must be >= 0")
	}
	if c.RemoteCDPEndpoint != "" {
		u, err := url.Parse(c.RemoteCDPEndpoint)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("remote cdp endpoint must be a ws:// or wss:// URL")
		}
	}
	if c.SolverEndpoint != "" && !strings.HasPrefix(c.SolverEndpoint, "http") {
		return fmt.Errorf("solver endpoint must be an http(s) URL")
	}
	return nil
}
