package identity

import (
	"context"
	"net"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perimetra/ztcore/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the verified session identity for a request. Identity
// verification itself happens in the session layer; this record carries the
// already-established fact into the decision pipeline.
type Identity struct {
	// Token claims
	EntityID   string
	EntityType model.EntityType
	Groups     []string
	IssuedAt   time.Time
	ExpiresAt  time.Time

	// Request context
	RemoteIP net.IP

	// The underlying verified claims
	Claims jwt.MapClaims
}

// FromClaims creates an Identity from verified session token claims.
func FromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{Claims: claims}

	if sub, err := claims.GetSubject(); err == nil {
		id.EntityID = sub
	}
	if et, ok := claims["entity_type"].(string); ok {
		if parsed, err := model.EntityTypeString(et); err == nil {
			id.EntityType = parsed
		}
	}
	if groups, ok := claims["groups"].([]interface{}); ok {
		for _, g := range groups {
			if s, ok := g.(string); ok {
				id.Groups = append(id.Groups, s)
			}
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}

	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Expired reports whether the session has passed its expiry.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
