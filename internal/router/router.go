// Package router maps a jurisdiction and the runtime configuration to a
// fetch strategy. Resolution is a pure function: no I/O, and the same
// (jurisdiction, config) pair always yields the same strategy.
package router

import (
	"fmt"

	"github.com/docket-watch/acquire/internal/config"
	"github.com/docket-watch/acquire/internal/errdefs"
)

// Resolve decides how a jurisdiction's pages are fetched. First match wins:
//
//  1. Challenge-protected sites need the solver; without an API key this
//     fails fast with ConfigurationMissing before any resource is acquired.
//  2. WAF-protected sites use a residential proxy when one is configured,
//     otherwise a local browser as a documented best effort.
//  3. JS-rendered sites use the shared remote pool when configured,
//     otherwise a local browser.
//  4. Everything else is a plain GET.
func Resolve(j Jurisdiction, cfg *config.SessionConfig) (Strategy, error) {
	if j.Protection.Challenged() {
		if !cfg.HasSolver() {
			return DirectHttp, errdefs.ConfigurationMissing(
				fmt.Sprintf("jurisdiction %s requires a %s solver but no solver API key is configured", j.Code, j.Protection))
		}
		return BrowserChallengeAssisted, nil
	}

	if j.Protection == ProtectionWAF {
		if cfg.HasProxy() {
			return BrowserResidentialProxy, nil
		}
		// Likely to be blocked, but the caller asked and a datacenter IP
		// occasionally slips through.
		return BrowserLocal, nil
	}

	if j.Protection == ProtectionJS {
		if cfg.HasRemoteCDP() {
			return BrowserRemoteCdp, nil
		}
		return BrowserLocal, nil
	}

	return DirectHttp, nil
}

// MissingRequirements lists the registered jurisdictions whose resolved
// strategy would fail for lack of configuration. Surfaced at startup so
// operators learn about missing solver keys before a batch run, not from
// per-request errors.
func MissingRequirements(r *Registry, cfg *config.SessionConfig) []string {
	var missing []string
	for _, code := range r.Codes() {
		j, _ := r.Get(code)
		if _, err := Resolve(j, cfg); err != nil {
			missing = append(missing, fmt.Sprintf("%s: %v", code, err))
		} else if j.Protection == ProtectionWAF && !cfg.HasProxy() {
			missing = append(missing, fmt.Sprintf("%s: WAF-protected but no residential proxy configured (best-effort local browser will be used)", code))
		}
	}
	return missing
}
