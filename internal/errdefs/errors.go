// Package errdefs defines the acquisition error taxonomy.
//
// Every I/O failure is re-classified into one of these kinds at the component
// boundary (fetcher, browser session manager, challenge solver) so the
// engine's retry logic never sees a raw transport error. Callers branch on
// the kind to decide whether a failed pair is worth re-queuing.
package errdefs

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind identifies a class of acquisition failure.
type Kind string

const (
	// KindNotFound means the upstream confirmed the docket does not exist.
	// Callers treat this as found=false, not as a failure.
	KindNotFound Kind = "NOT_FOUND"
	// KindTimeout covers deadline expiry on fetch, navigation, or solver
	// polling. Transient.
	KindTimeout Kind = "TIMEOUT"
	// KindChallengeUnsolved means a bot-defense interstitial could not be
	// cleared for this attempt. Permanent for the attempt.
	KindChallengeUnsolved Kind = "CHALLENGE_UNSOLVED"
	// KindConfigurationMissing means the jurisdiction's strategy needs a
	// credential (solver key, proxy) that is not configured. Raised before
	// any network call.
	KindConfigurationMissing Kind = "CONFIGURATION_MISSING"
	// KindUpstream carries the HTTP status of a non-2xx response or a
	// transport-level failure. Transient for 5xx and 429, permanent
	// otherwise.
	KindUpstream Kind = "UPSTREAM_ERROR"
	// KindParse means the registered parser rejected or panicked on the
	// fetched content, usually because upstream markup changed.
	KindParse Kind = "PARSE_ERROR"
)

// Error is the typed failure returned by every acquisition component.
type Error struct {
	Kind       Kind
	Status     int // HTTP status for KindUpstream, zero otherwise
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindUpstream && e.Status > 0 && e.Underlying != nil:
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Underlying)
	case e.Kind == KindUpstream && e.Status > 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Underlying != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches against another *Error by kind, so callers can use
// errors.Is(err, &Error{Kind: KindTimeout}).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Transient reports whether the engine may retry this failure.
// Only timeouts and 5xx/429 upstream responses qualify.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout:
		return true
	case KindUpstream:
		return e.Status == 0 || e.Status == 429 || e.Status >= 500
	default:
		return false
	}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Timeout(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Underlying: err}
}

func ChallengeUnsolved(message string) *Error {
	return &Error{Kind: KindChallengeUnsolved, Message: message}
}

func ConfigurationMissing(message string) *Error {
	return &Error{Kind: KindConfigurationMissing, Message: message}
}

func Upstream(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: message, Underlying: err}
}

func Parse(cause error) *Error {
	return &Error{Kind: KindParse, Message: "parser failed", Underlying: cause}
}

// Classify coerces an arbitrary error into the taxonomy. Typed errors pass
// through untouched; context deadlines and net timeouts become KindTimeout;
// anything else is treated as an upstream transport failure.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout("deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return Timeout("request cancelled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout("network timeout", err)
	}

	return Upstream(0, "transport failure", err)
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
