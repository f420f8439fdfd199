package router

// Strategy represents how a jurisdiction's pages are fetched. It is resolved
// once per request and never changes afterwards.
type Strategy int

const (
	// DirectHttp uses a plain GET with no rendering.
	DirectHttp Strategy = iota

	// BrowserLocal launches a local headless browser with anti-automation
	// flags.
	BrowserLocal

	// BrowserResidentialProxy launches locally but egresses through a
	// residential proxy endpoint.
	BrowserResidentialProxy

	// BrowserRemoteCdp attaches to a pre-provisioned remote browser pool
	// over the DevTools WebSocket protocol.
	BrowserRemoteCdp

	// BrowserChallengeAssisted is a local browser session backed by a remote
	// CAPTCHA-solving service.
	BrowserChallengeAssisted
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case DirectHttp:
		return "DirectHttp"
	case BrowserLocal:
		return "BrowserLocal"
	case BrowserResidentialProxy:
		return "BrowserResidentialProxy"
	case BrowserRemoteCdp:
		return "BrowserRemoteCdp"
	case BrowserChallengeAssisted:
		return "BrowserChallengeAssisted"
	default:
		return "Unknown"
	}
}

// NeedsBrowser reports whether the strategy acquires a browser session.
func (s Strategy) NeedsBrowser() bool {
	return s != DirectHttp
}
