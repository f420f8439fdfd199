package solver

import "strings"

// Built-in challenge markers. Sites change defenses without warning, so the
// engine checks every fetched page against these, not just pages from
// jurisdictions pre-flagged as protected.
var turnstileMarkers = []string{
	"cf-turnstile",
	"challenges.cloudflare.com/turnstile",
	"cf_chl_",
	"/cdn-cgi/challenge-platform",
	"verifying you are human",
	"checking if the site connection is secure",
}

var recaptchaMarkers = []string{
	"g-recaptcha",
	"www.google.com/recaptcha",
	"grecaptcha.render",
	"grecaptcha.execute",
}

// DetectChallenge inspects page content and URL for bot-defense interstitial
// markers. extra carries jurisdiction-specific markers from the routing
// table; matches there default to the Turnstile flow since that is what the
// generic interstitials run.
func DetectChallenge(body, pageURL string, extra []string) (Kind, bool) {
	haystack := strings.ToLower(body) + "\n" + strings.ToLower(pageURL)

	for _, m := range recaptchaMarkers {
		if strings.Contains(haystack, m) {
			return KindRecaptchaV2, true
		}
	}
	for _, m := range turnstileMarkers {
		if strings.Contains(haystack, m) {
			return KindTurnstile, true
		}
	}
	for _, m := range extra {
		if m != "" && strings.Contains(haystack, strings.ToLower(m)) {
			return KindTurnstile, true
		}
	}
	return "", false
}
