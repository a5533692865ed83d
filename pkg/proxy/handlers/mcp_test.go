package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

func newMCPMux(baseURL string, metrics Metrics) *http.ServeMux {
	issuer := token.NewIssuer(token.IssuerConfig{Secret: "k", TTL: time.Hour}, token.NewCache(), nil)
	forwarder := proxy.NewForwarder(proxy.ForwarderConfig{Issuer: issuer, ForceAccept: true})

	h := NewMCPHandler(MCPHandlerConfig{
		BaseURL:     func() string { return baseURL },
		PathSegment: "mcp",
		Forwarder:   forwarder,
		Metrics:     metrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/mcp/{path...}", h)
	mux.Handle("/api/mcp", h)
	return mux
}

func TestMCPHandlerProxies(t *testing.T) {
	var gotPath, gotAccept string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"tools":[{"name":"search"}]}`)
	}))
	defer upstream.Close()

	mux := newMCPMux(upstream.URL, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "http://proxy/api/mcp/tools/list", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPath != "/mcp/tools/list" {
		t.Errorf("expected fixed segment in upstream path, got %q", gotPath)
	}
	if gotAccept != proxy.StreamingAccept {
		t.Errorf("expected forced accept header, got %q", gotAccept)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected downstream content type, got %q", ct)
	}
}

func TestMCPHandlerNoSession(t *testing.T) {
	mux := newMCPMux("http://unused", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://proxy/api/mcp/tools", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMCPHandlerNoBaseURL(t *testing.T) {
	mux := newMCPMux("", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "http://proxy/api/mcp/tools", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body proxy.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Message != "Proxy target is not configured" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestMCPHandlerRawFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream text error")
	}))
	defer upstream.Close()

	mux := newMCPMux(upstream.URL, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "http://proxy/api/mcp/tools", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected upstream status passed through, got %d", rec.Code)
	}
	if rec.Body.String() != "upstream text error" {
		t.Errorf("body altered: %q", rec.Body.String())
	}
}

func TestMCPHandlerUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	metrics := &recordingMetrics{}
	mux := newMCPMux(upstream.URL, metrics)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "http://proxy/api/mcp/tools", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if metrics.upstreamErrors != 1 {
		t.Errorf("expected upstream error recorded, got %d", metrics.upstreamErrors)
	}
}
