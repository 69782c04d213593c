package entity

import (
	"crypto/rsa"
	"time"
)

// SigningKey is one public key from an issuer's published JWKS.
// A key is usable only while it is present in the currently cached set;
// the whole set is replaced on refresh, never patched entry by entry.
type SigningKey struct {
	Kid       string         // Key identifier from the JWKS entry.
	Algorithm string         // Declared signing algorithm, e.g. "RS256".
	PublicKey *rsa.PublicKey // Decoded RSA public key material.
	FetchedAt time.Time      // When this key's set was fetched.
}
