package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
)

// Sentinel errors for token issuance.
var (
	// ErrNoSigningSecret is returned when no signing secret is configured.
	// This is a configuration error surfaced per-request, not at startup.
	ErrNoSigningSecret = errors.New("no signing secret configured")

	// ErrUnsupportedAlgorithm is returned when the configured signing
	// algorithm is not a supported HMAC method.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// Recorder receives issuance events for metrics. A nil Recorder disables
// recording.
type Recorder interface {
	// RecordCacheHit is called when a valid cached token is returned.
	RecordCacheHit()

	// RecordCacheMiss is called when no valid cached token exists and a
	// new token is signed.
	RecordCacheMiss()

	// RecordSignFailure is called when signing fails.
	RecordSignFailure()
}

// IssuerConfig contains configuration for the token issuer.
type IssuerConfig struct {
	// Secret is the symmetric signing key. Empty means unconfigured.
	Secret string

	// Algorithm is the HMAC signing algorithm name ("HS256", "HS384",
	// "HS512").
	Algorithm string

	// TTL is the token lifetime. Issued tokens carry exp = iat + TTL and
	// are cached for the same window.
	TTL time.Duration
}

// Issuer builds claim sets, signs them, and populates the token cache. It
// is the sole writer of cache entries; no other component mutates the cache
// directly.
type Issuer struct {
	cache   *Cache
	secret  []byte
	method  jwt.SigningMethod
	ttl     time.Duration
	metrics Recorder
	logger  *slog.Logger

	// now returns the current time. Overridable for tests.
	now func() time.Time
}

// NewIssuer creates a token issuer backed by the given cache.
// The cache must not be nil. The metrics recorder may be nil.
func NewIssuer(cfg IssuerConfig, cache *Cache, metrics Recorder) *Issuer {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &Issuer{
		cache:   cache,
		secret:  []byte(cfg.Secret),
		method:  signingMethod(cfg.Algorithm),
		ttl:     ttl,
		metrics: metrics,
		logger:  slog.Default().With("component", "token.issuer"),
		now:     time.Now,
	}
}

// CacheKey returns the cache key for an identity: its two fields joined by
// a separator, matched exactly and case-sensitively. Callers must supply a
// stable representation; no canonicalization is performed.
func CacheKey(id *auth.Identity) string {
	return id.UserID + "|" + id.Email
}

// Issue returns a signed bearer token for the identity.
//
// If a cached token exists and has not expired, it is returned unchanged;
// the extra claims of the current call are ignored on a cache hit, because
// the cache keys on identity rather than claim content. A display name that
// changed within the validity window therefore rides out the window in the
// cached token.
//
// On a miss or expiry, a new claim set is built with iat = now and
// exp = now + TTL, the extra claims are merged (fixed claims always win),
// the result is signed, cached, and returned. A failed signing never writes
// a cache entry.
func (i *Issuer) Issue(ctx context.Context, id *auth.Identity, extra map[string]any) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSigningSecret
	}
	if i.method == nil {
		return "", ErrUnsupportedAlgorithm
	}

	key := CacheKey(id)
	if cached, ok := i.cache.Get(key); ok {
		if i.metrics != nil {
			i.metrics.RecordCacheHit()
		}
		return cached, nil
	}
	if i.metrics != nil {
		i.metrics.RecordCacheMiss()
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)

	// Extra claims first, fixed claims after: callers may add arbitrary
	// additional fields but can never override sub, email, iat, or exp.
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = id.UserID
	claims["email"] = id.Email
	claims["iat"] = now.Unix()
	claims["exp"] = expiresAt.Unix()

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		if i.metrics != nil {
			i.metrics.RecordSignFailure()
		}
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	i.cache.Set(key, signed, expiresAt)

	i.logger.DebugContext(ctx, "issued token",
		"user_id", id.UserID,
		"expires_at", expiresAt,
	)

	return signed, nil
}

// Evict removes the cached token for an identity, if any. The next Issue
// call for the identity re-signs.
func (i *Issuer) Evict(id *auth.Identity) {
	i.cache.Evict(CacheKey(id))
}

// signingMethod maps an algorithm name to its HMAC signing method.
// Returns nil for unsupported names.
func signingMethod(algorithm string) jwt.SigningMethod {
	switch algorithm {
	case "HS256", "":
		return jwt.SigningMethodHS256
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return nil
	}
}
