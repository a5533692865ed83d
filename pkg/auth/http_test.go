package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newResolverFor(url string) *HTTPResolver {
	return NewHTTPResolver(HTTPResolverConfig{
		IdentityURL: url,
		CookieName:  "session",
		Timeout:     2 * time.Second,
	})
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: "session", Value: value})
	}
	return r
}

func TestHTTPResolverResolvesUser(t *testing.T) {
	var gotCookie string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"u1","email":"u1@x.com","display_name":"User One"}`)
	}))
	defer provider.Close()

	id, err := newResolverFor(provider.URL).Resolve(context.Background(), requestWithCookie("abc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotCookie != "abc" {
		t.Errorf("expected session cookie forwarded, got %q", gotCookie)
	}
	if id.UserID != "u1" || id.Email != "u1@x.com" || id.DisplayName != "User One" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestHTTPResolverNameFallback(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"u1","email":"u1@x.com","name":"Short Name"}`)
	}))
	defer provider.Close()

	id, err := newResolverFor(provider.URL).Resolve(context.Background(), requestWithCookie("abc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.DisplayName != "Short Name" {
		t.Errorf("DisplayName = %q, want %q", id.DisplayName, "Short Name")
	}
}

func TestHTTPResolverNoCookie(t *testing.T) {
	_, err := newResolverFor("http://unused").Resolve(context.Background(), requestWithCookie(""))
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession without cookie, got %v", err)
	}
}

func TestHTTPResolverRejectedSession(t *testing.T) {
	// A provider rejection is an absent session, not a lookup failure.
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer provider.Close()

	_, err := newResolverFor(provider.URL).Resolve(context.Background(), requestWithCookie("expired"))
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for rejected session, got %v", err)
	}
}

func TestHTTPResolverMissingUserID(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"email":"u1@x.com"}`)
	}))
	defer provider.Close()

	_, err := newResolverFor(provider.URL).Resolve(context.Background(), requestWithCookie("abc"))
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for empty user id, got %v", err)
	}
}

func TestHTTPResolverProviderUnreachable(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	provider.Close()

	_, err := newResolverFor(provider.URL).Resolve(context.Background(), requestWithCookie("abc"))
	if err == nil {
		t.Fatal("expected error for unreachable provider")
	}
	if errors.Is(err, ErrNoSession) {
		t.Error("transport failure must be distinguishable from an absent session")
	}
}
