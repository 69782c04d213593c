// Package jwks implements bearer-token verification against a remote,
// rotating JWKS key set. No trusted local copy of the keys exists; the
// issuer's published set is fetched over HTTPS and cached with a short TTL.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"

	"golang.org/x/sync/singleflight"
)

const wellKnownPath = "/.well-known/jwks.json"

// jwksDocument is the wire shape of the issuer's published key set.
type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type cachedSet struct {
	keys      map[string]*entity.SigningKey
	fetchedAt time.Time
}

// Cache fetches and caches issuers' public signing keys. Reads are served
// from the cached set until its TTL lapses; a refetch replaces the whole set
// atomically, so readers never observe a half-updated set. Concurrent misses
// for the same issuer coalesce into one upstream fetch.
type Cache struct {
	endpoint   string
	ttl        time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	sets  map[string]*cachedSet
	group singleflight.Group
}

// NewCache creates a key set cache configured from cfg.Auth.
func NewCache(cfg *config.Config, logger *slog.Logger) service.KeySetCache {
	return &Cache{
		endpoint:   cfg.Auth.JWKSEndpoint,
		ttl:        cfg.Auth.JWKSTTL,
		httpClient: &http.Client{Timeout: cfg.Auth.JWKSFetchTimeout},
		logger:     logger,
		sets:       make(map[string]*cachedSet),
	}
}

// Keys returns the issuer's current key set, fetching it when the cached
// copy is absent or expired. The returned map is replaced wholesale on
// refresh and must not be mutated by callers.
func (c *Cache) Keys(ctx context.Context, issuer string) (map[string]*entity.SigningKey, error) {
	c.mu.RLock()
	set, ok := c.sets[issuer]
	c.mu.RUnlock()

	if ok && time.Since(set.fetchedAt) < c.ttl {
		return set.keys, nil
	}

	// Expired or missing: coalesce concurrent refetches per issuer.
	result, err, _ := c.group.Do(issuer, func() (any, error) {
		// A racing caller may have refreshed the set while this one waited
		// on the flight lock.
		c.mu.RLock()
		current, ok := c.sets[issuer]
		c.mu.RUnlock()
		if ok && time.Since(current.fetchedAt) < c.ttl {
			return current.keys, nil
		}

		keys, err := c.fetch(ctx, issuer)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.sets[issuer] = &cachedSet{keys: keys, fetchedAt: time.Now()}
		c.mu.Unlock()

		return keys, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(map[string]*entity.SigningKey), nil
}

// Invalidate drops the issuer's cached set so the next read refetches.
func (c *Cache) Invalidate(issuer string) {
	c.mu.Lock()
	delete(c.sets, issuer)
	c.mu.Unlock()
}

func (c *Cache) fetch(ctx context.Context, issuer string) (map[string]*entity.SigningKey, error) {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = strings.TrimRight(issuer, "/") + wellKnownPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build jwks request: %v", service.ErrKeySetUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch jwks: %v", service.ErrKeySetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: jwks fetch failed: status=%d body=%s",
			service.ErrKeySetUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode jwks: %v", service.ErrKeySetUnavailable, err)
	}

	keys, err := parseKeySet(doc)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched JWKS key set",
		slog.String("issuer", issuer),
		slog.Int("keys", len(keys)),
	)

	return keys, nil
}

// parseKeySet converts JWK entries into usable signing keys. Only RSA keys
// are supported; entries without a kid are skipped rather than guessed at.
func parseKeySet(doc jwksDocument) (map[string]*entity.SigningKey, error) {
	now := time.Now()
	keys := make(map[string]*entity.SigningKey, len(doc.Keys))

	for _, key := range doc.Keys {
		if strings.ToUpper(strings.TrimSpace(key.Kty)) != "RSA" {
			continue
		}
		kid := strings.TrimSpace(key.Kid)
		if kid == "" {
			continue
		}

		public, err := parseRSAPublicKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", service.ErrKeySetUnavailable, kid, err)
		}

		alg := strings.TrimSpace(key.Alg)
		if alg == "" {
			alg = "RS256"
		}

		keys[kid] = &entity.SigningKey{
			Kid:       kid,
			Algorithm: alg,
			PublicKey: public,
			FetchedAt: now,
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no usable RSA keys in jwks", service.ErrKeySetUnavailable)
	}

	return keys, nil
}

func parseRSAPublicKey(key jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.N))
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.E))
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	eBig := new(big.Int).SetBytes(eBytes)
	if !eBig.IsInt64() {
		return nil, fmt.Errorf("exponent out of range")
	}
	eValue := int(eBig.Int64())
	if eValue <= 1 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: eValue,
	}, nil
}
