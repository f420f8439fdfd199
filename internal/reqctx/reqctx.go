// Package reqctx threads a per-acquisition id through the context so every
// log line from one docket lookup can be correlated.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

type key int

const requestKey key = 0

// RequestContext carries the id and start time of one acquisition.
type RequestContext struct {
	RequestID string
	StartTime time.Time
}

// WithRequestContext attaches a fresh request id to ctx.
func WithRequestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: generateID(),
		StartTime: time.Now(),
	})
}

// Get returns the request context, or a placeholder when none was attached.
func Get(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{RequestID: "unknown", StartTime: time.Now()}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
