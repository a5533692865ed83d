package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
)

// countingRecorder counts issuance events.
type countingRecorder struct {
	hits, misses, failures int
}

func (r *countingRecorder) RecordCacheHit()    { r.hits++ }
func (r *countingRecorder) RecordCacheMiss()   { r.misses++ }
func (r *countingRecorder) RecordSignFailure() { r.failures++ }

func testIdentity() *auth.Identity {
	return &auth.Identity{UserID: "u1", Email: "u1@x.com", DisplayName: "User One"}
}

// parseClaims verifies the token against the secret and returns its claims.
func parseClaims(t *testing.T, tokenStr, secret string) jwt.MapClaims {
	t.Helper()

	// Tokens in these tests are issued with a fixed clock, so exp must not
	// be validated against wall-clock time; iat/exp are asserted explicitly
	// by the callers.
	parsed, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	return claims
}

func TestIssuerClaims(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cache := NewCacheWithClock(func() time.Time { return base })
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", TTL: time.Hour}, cache, nil)
	issuer.now = func() time.Time { return base }

	signed, err := issuer.Issue(context.Background(), testIdentity(), map[string]any{
		"org": "acme",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parseClaims(t, signed, "s3cret")
	if claims["sub"] != "u1" {
		t.Errorf("expected sub u1, got %v", claims["sub"])
	}
	if claims["email"] != "u1@x.com" {
		t.Errorf("expected email u1@x.com, got %v", claims["email"])
	}
	if claims["org"] != "acme" {
		t.Errorf("expected extra claim org=acme, got %v", claims["org"])
	}
	if got := int64(claims["iat"].(float64)); got != base.Unix() {
		t.Errorf("expected iat %d, got %d", base.Unix(), got)
	}
	if got := int64(claims["exp"].(float64)); got != base.Add(time.Hour).Unix() {
		t.Errorf("expected exp %d, got %d", base.Add(time.Hour).Unix(), got)
	}
}

func TestIssuerExtraClaimsCannotOverrideFixed(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cache := NewCacheWithClock(func() time.Time { return base })
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", TTL: time.Hour}, cache, nil)
	issuer.now = func() time.Time { return base }

	signed, err := issuer.Issue(context.Background(), testIdentity(), map[string]any{
		"sub":   "attacker",
		"email": "attacker@x.com",
		"exp":   0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parseClaims(t, signed, "s3cret")
	if claims["sub"] != "u1" {
		t.Errorf("extra claim overrode sub: %v", claims["sub"])
	}
	if claims["email"] != "u1@x.com" {
		t.Errorf("extra claim overrode email: %v", claims["email"])
	}
	if got := int64(claims["exp"].(float64)); got != base.Add(time.Hour).Unix() {
		t.Errorf("extra claim overrode exp: %d", got)
	}
}

func TestIssuerCacheReuse(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base

	recorder := &countingRecorder{}
	cache := NewCacheWithClock(func() time.Time { return now })
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", TTL: time.Hour}, cache, recorder)
	issuer.now = func() time.Time { return now }

	id := testIdentity()
	ctx := context.Background()

	first, err := issuer.Issue(ctx, id, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second issuance within the window returns the same token even with
	// different extra claims.
	now = base.Add(30 * time.Minute)
	second, err := issuer.Issue(ctx, id, map[string]any{"org": "changed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Error("expected cached token within validity window")
	}

	// After expiry a new token is signed with a later iat.
	now = base.Add(time.Hour)
	third, err := issuer.Issue(ctx, id, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Error("expected a new token after expiry")
	}

	claims := parseClaims(t, third, "s3cret")
	if got := int64(claims["iat"].(float64)); got != now.Unix() {
		t.Errorf("expected fresh iat %d, got %d", now.Unix(), got)
	}

	if recorder.hits != 1 || recorder.misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %d/%d", recorder.hits, recorder.misses)
	}
}

func TestIssuerDistinctIdentities(t *testing.T) {
	cache := NewCache()
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", TTL: time.Hour}, cache, nil)

	ctx := context.Background()
	a, err := issuer.Issue(ctx, &auth.Identity{UserID: "u1", Email: "u1@x.com"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := issuer.Issue(ctx, &auth.Identity{UserID: "u2", Email: "u2@x.com"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Error("expected distinct tokens for distinct identities")
	}
	if cache.Size() != 2 {
		t.Errorf("expected 2 cache entries, got %d", cache.Size())
	}
}

func TestIssuerNoSecret(t *testing.T) {
	recorder := &countingRecorder{}
	issuer := NewIssuer(IssuerConfig{TTL: time.Hour}, NewCache(), recorder)

	_, err := issuer.Issue(context.Background(), testIdentity(), nil)
	if !errors.Is(err, ErrNoSigningSecret) {
		t.Fatalf("expected ErrNoSigningSecret, got %v", err)
	}
	if recorder.hits != 0 || recorder.misses != 0 {
		t.Error("missing secret must not touch the cache")
	}
}

func TestIssuerUnsupportedAlgorithm(t *testing.T) {
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", Algorithm: "RS256"}, NewCache(), nil)

	_, err := issuer.Issue(context.Background(), testIdentity(), nil)
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestIssuerAlgorithms(t *testing.T) {
	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		t.Run("alg="+alg, func(t *testing.T) {
			issuer := NewIssuer(IssuerConfig{Secret: "s3cret", Algorithm: alg}, NewCache(), nil)
			if _, err := issuer.Issue(context.Background(), testIdentity(), nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestIssuerEvict(t *testing.T) {
	cache := NewCache()
	issuer := NewIssuer(IssuerConfig{Secret: "s3cret", TTL: time.Hour}, cache, nil)

	id := testIdentity()
	ctx := context.Background()

	if _, err := issuer.Issue(ctx, id, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issuer.Evict(id)

	if cache.Size() != 0 {
		t.Errorf("expected empty cache after evict, got %d", cache.Size())
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey(&auth.Identity{UserID: "u1", Email: "u1@x.com"})
	if key != "u1|u1@x.com" {
		t.Errorf("unexpected cache key %q", key)
	}
}
