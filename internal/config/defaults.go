package config

import "time"

// Default constants for the acquisition engine configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	DefaultHTTPTimeout       = 30 * time.Second
	DefaultNavigationTimeout = 45 * time.Second

	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0

	DefaultMaxBrowserContexts = 3
	MaxBrowserContexts        = 10
	DefaultBrowserHeadless    = true

	DefaultHostInterval = 2 * time.Second
	DefaultHostBurst    = 1

	DefaultSolverEndpoint     = "https://api.capsolver.com"
	DefaultSolverPollInterval = 3 * time.Second
	DefaultSolverMaxPolls     = 40

	DefaultProxyCountry = "us"

	DefaultClearanceTTL = 20 * time.Minute
)
