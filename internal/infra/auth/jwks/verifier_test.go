package jwks

import (
	"context"
	"crypto/rsa"
	"sync/atomic"
	"testing"
	"time"

	"beacon/config"
	"beacon/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://issuer.example.com"
	testAudience = "beacon-api"
)

type tokenOverrides struct {
	issuer   string
	audience string
	expires  time.Time
	kid      string
}

func signToken(t *testing.T, key *rsa.PrivateKey, o tokenOverrides) string {
	t.Helper()

	if o.issuer == "" {
		o.issuer = testIssuer
	}
	if o.audience == "" {
		o.audience = testAudience
	}
	if o.expires.IsZero() {
		o.expires = time.Now().Add(time.Hour)
	}
	if o.kid == "" {
		o.kid = "key-1"
	}

	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    o.issuer,
		Audience:  jwt.ClaimStrings{o.audience},
		ExpiresAt: jwt.NewNumericDate(o.expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = o.kid

	signed, err := token.SignedString(key)
	require.NoError(t, err)

	return signed
}

func verifierFor(t *testing.T, endpoint string) service.TokenVerifier {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			Issuer:           testIssuer,
			Audience:         testAudience,
			JWKSEndpoint:     endpoint,
			JWKSTTL:          time.Minute,
			JWKSFetchTimeout: 5 * time.Second,
		},
	}

	return NewVerifier(cfg, NewCache(cfg, testLogger()))
}

func TestVerifier_ValidToken(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	claims, err := verifier.Verify(context.Background(), signToken(t, key, tokenOverrides{}))

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, testAudience, claims.Audience)
	assert.Equal(t, "key-1", claims.Kid)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifier_MalformedToken(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	_, err := verifier.Verify(context.Background(), "clearly-not-a-jwt")

	assert.ErrorIs(t, err, service.ErrMalformedToken)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	token := signToken(t, key, tokenOverrides{expires: time.Now().Add(-time.Minute)})
	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestVerifier_IssuerMismatch(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	token := signToken(t, key, tokenOverrides{issuer: "https://evil.example.com"})
	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, service.ErrIssuerMismatch)
}

func TestVerifier_AudienceMismatch(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	token := signToken(t, key, tokenOverrides{audience: "some-other-api"})
	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, service.ErrAudienceMismatch)
}

func TestVerifier_WrongKeySignature(t *testing.T) {
	servedKey := generateTestKey(t)
	otherKey := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", servedKey)} }, nil)
	verifier := verifierFor(t, srv.URL)

	// Signed by a key the issuer never published, but claiming its kid.
	token := signToken(t, otherKey, tokenOverrides{})
	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, service.ErrSignatureInvalid)
}

func TestVerifier_AlgorithmSubstitutionRejected(t *testing.T) {
	key := generateTestKey(t)
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, nil)
	verifier := verifierFor(t, srv.URL)

	// HS256 token claiming the RSA key's kid. The header alg must match the
	// key's declared algorithm, so this is rejected before signature checks.
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = "key-1"
	signed, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signed)

	assert.ErrorIs(t, err, service.ErrSignatureInvalid)
}

func TestVerifier_KeyRotationRetriesOnce(t *testing.T) {
	oldKey := generateTestKey(t)
	newKey := generateTestKey(t)

	var fetches atomic.Int64
	served := func() []jwk {
		if fetches.Load() <= 1 {
			return []jwk{jwkFor("key-old", oldKey)}
		}

		return []jwk{jwkFor("key-new", newKey)}
	}
	srv := jwksServer(t, served, &fetches)
	verifier := verifierFor(t, srv.URL)

	// Warm the cache with the pre-rotation set.
	_, err := verifier.Verify(context.Background(), signToken(t, oldKey, tokenOverrides{kid: "key-old"}))
	require.NoError(t, err)

	// A token signed with the rotated key: the kid misses the cached set,
	// triggering one refetch that finds it.
	claims, err := verifier.Verify(context.Background(), signToken(t, newKey, tokenOverrides{kid: "key-new"}))

	require.NoError(t, err)
	assert.Equal(t, "key-new", claims.Kid)
	assert.Equal(t, int64(2), fetches.Load())
}

func TestVerifier_UnknownKidFailsAfterOneRetry(t *testing.T) {
	key := generateTestKey(t)
	var fetches atomic.Int64
	srv := jwksServer(t, func() []jwk { return []jwk{jwkFor("key-1", key)} }, &fetches)
	verifier := verifierFor(t, srv.URL)

	token := signToken(t, key, tokenOverrides{kid: "key-nobody-has"})
	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, service.ErrUnknownSigningKey)
	// Initial fetch plus exactly one rotation retry, never a hot loop.
	assert.Equal(t, int64(2), fetches.Load())
}

func TestVerifier_KeySetUnavailable(t *testing.T) {
	key := generateTestKey(t)
	verifier := verifierFor(t, "http://127.0.0.1:1")

	_, err := verifier.Verify(context.Background(), signToken(t, key, tokenOverrides{}))

	assert.ErrorIs(t, err, service.ErrKeySetUnavailable)
}
