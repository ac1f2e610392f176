package auth

import (
	"context"
	"time"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	requestCtxKey
)

// Identity is the minimal authenticated principal attached by the identity
// guard. Nil on public endpoints.
type Identity struct {
	UserID string
	Email  string
}

// RequestContext is the per-request capsule threaded as the first argument
// through every business operation. Built once after identity resolution,
// immutable afterwards.
type RequestContext struct {
	User      *Identity
	Method    string
	Path      string
	IP        string
	UserAgent string
	RequestID string
	Timestamp time.Time
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey).(*Identity); ok {
		return v
	}
	return nil
}

func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestCtxKey, rc)
}

func RequestContextFrom(ctx context.Context) *RequestContext {
	if v, ok := ctx.Value(requestCtxKey).(*RequestContext); ok {
		return v
	}
	return nil
}
