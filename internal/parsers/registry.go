// Package parsers holds the per-jurisdiction content parsers. Each parser is
// a pure function from raw page content to a partial record; the engine
// resolves the registry once at startup and only ever calls through it.
// Strategy selection, retries, and challenges are none of a parser's
// business.
package parsers

import (
	"fmt"

	"github.com/docket-watch/acquire/pkg/models"
)

// Parser extracts docket metadata from fetched page content.
type Parser func(raw *models.RawContent) (*models.PartialRecord, error)

// Registry maps jurisdiction codes to their parsers. Built once at startup;
// read-only afterwards.
type Registry struct {
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry returns a registry with the built-in jurisdiction parsers
// registered and the generic parser as fallback for everything else.
func NewRegistry() *Registry {
	r := &Registry{
		parsers:  make(map[string]Parser),
		fallback: Generic,
	}
	r.Register("GA", Georgia)
	r.Register("AZ", Arizona)
	r.Register("IL", Illinois)
	return r
}

// Register binds a parser to a jurisdiction code, replacing any previous
// binding.
func (r *Registry) Register(code string, p Parser) {
	r.parsers[code] = p
}

// Resolve returns the parser for a code, falling back to the generic parser.
func (r *Registry) Resolve(code string) Parser {
	if p, ok := r.parsers[code]; ok {
		return p
	}
	return r.fallback
}

// Has reports whether a dedicated (non-fallback) parser exists for the code.
func (r *Registry) Has(code string) bool {
	_, ok := r.parsers[code]
	return ok
}

// Safe wraps a parser so a panic inside it surfaces as an error instead of
// taking down the acquisition goroutine. Upstream markup changes are exactly
// the kind of thing that makes selector chains panic.
func Safe(p Parser) Parser {
	return func(raw *models.RawContent) (rec *models.PartialRecord, err error) {
		defer func() {
			if r := recover(); r != nil {
				rec = nil
				err = fmt.Errorf("parser panicked: %v", r)
			}
		}()
		return p(raw)
	}
}
