package jwks

import (
	"context"
	"errors"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates bearer tokens against the configured issuer's key set.
// It holds no key material itself; keys come from the KeySetCache.
type Verifier struct {
	cache    service.KeySetCache
	issuer   string
	audience string
}

// NewVerifier creates a token verifier for the configured issuer and audience.
func NewVerifier(cfg *config.Config, cache service.KeySetCache) service.TokenVerifier {
	return &Verifier{
		cache:    cache,
		issuer:   cfg.Auth.Issuer,
		audience: cfg.Auth.Audience,
	}
}

// tokenClaims is the wire shape of the claims this service accepts.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verify checks the token's signature, algorithm, expiry, issuer and
// audience. The kid and alg come from the unverified header; neither is
// trusted until the signature checks out against the located key.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*service.Claims, error) {
	kid, headerAlg, err := parseHeader(rawToken)
	if err != nil {
		return nil, err
	}

	key, err := v.lookupKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	// Reject algorithm substitution before touching the signature: the
	// header's alg must match what the key set declares for this key.
	if headerAlg != key.Algorithm {
		return nil, service.ErrSignatureInvalid
	}

	claims := &tokenClaims{}
	_, err = jwt.ParseWithClaims(rawToken, claims,
		func(*jwt.Token) (any, error) { return key.PublicKey, nil },
		jwt.WithValidMethods([]string{key.Algorithm}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	return buildClaims(claims, kid)
}

// lookupKey finds the signing key for kid, tolerating key rotation racing
// against token issuance with exactly one invalidate-and-refetch retry.
func (v *Verifier) lookupKey(ctx context.Context, kid string) (*entity.SigningKey, error) {
	const maxAttempts = 2

	for attempt := 1; ; attempt++ {
		keys, err := v.cache.Keys(ctx, v.issuer)
		if err != nil {
			return nil, err
		}

		if key, ok := keys[kid]; ok {
			return key, nil
		}

		if attempt == maxAttempts {
			return nil, service.ErrUnknownSigningKey
		}

		v.cache.Invalidate(v.issuer)
	}
}

// parseHeader extracts kid and alg from the token header without trusting
// any embedded claim.
func parseHeader(rawToken string) (kid, alg string, err error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return "", "", service.ErrMalformedToken
	}

	kid, _ = token.Header["kid"].(string)
	alg, _ = token.Header["alg"].(string)
	if kid == "" || alg == "" {
		return "", "", service.ErrMalformedToken
	}

	return kid, alg, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return service.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return service.ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return service.ErrAudienceMismatch
	default:
		return service.ErrSignatureInvalid
	}
}

// buildClaims converts verified wire claims into the typed domain structure,
// checking required fields eagerly rather than on later access.
func buildClaims(claims *tokenClaims, kid string) (*service.Claims, error) {
	if claims.Subject == "" || claims.Issuer == "" || len(claims.Audience) == 0 || claims.ExpiresAt == nil {
		return nil, service.ErrMalformedToken
	}

	return &service.Claims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Audience:  claims.Audience[0],
		ExpiresAt: claims.ExpiresAt.Time,
		Kid:       kid,
		Email:     claims.Email,
	}, nil
}
