// Package service defines the domain service interfaces the use cases and
// delivery layer depend on.
package service

import (
	"context"
	"errors"
	"time"

	"beacon/internal/domain/entity"
)

// Token verification failure modes. The delivery layer maps all of them to
// 401 without echoing any token material.
var (
	ErrMalformedToken    = errors.New("malformed token")
	ErrUnknownSigningKey = errors.New("unknown signing key")
	ErrSignatureInvalid  = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrIssuerMismatch    = errors.New("token issuer mismatch")
	ErrAudienceMismatch  = errors.New("token audience mismatch")
)

// ErrKeySetUnavailable indicates the issuer's JWKS endpoint was unreachable
// or returned malformed data. Unlike the token errors above, this is a
// dependency failure and maps to 500.
var ErrKeySetUnavailable = errors.New("signing key set unavailable")

// Claims holds the decoded, eagerly validated bearer-token claims.
// Required fields are checked at decode time, not on access.
type Claims struct {
	Subject   string    // `sub` — the caller's identity.
	Issuer    string    // `iss` — the verified issuer.
	Audience  string    // `aud` — the verified audience.
	ExpiresAt time.Time // `exp` — token expiry.
	Kid       string    // Key identifier from the token header.
	Email     string    // Optional `email` claim, when the issuer provides it.
}

// TokenVerifier validates a bearer token's signature, issuer, audience and
// expiry against the issuer's published key set.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// KeySetCache serves an issuer's current public signing keys, refreshing the
// whole set atomically when the cached copy expires.
type KeySetCache interface {
	// Keys returns the cached key set for the issuer, fetching it when the
	// cache is empty or expired. Concurrent misses for the same issuer
	// coalesce into a single upstream fetch.
	Keys(ctx context.Context, issuer string) (map[string]*entity.SigningKey, error)

	// Invalidate drops the cached set for the issuer so the next read
	// refetches. Used to tolerate key rotation racing token issuance.
	Invalidate(issuer string)
}
