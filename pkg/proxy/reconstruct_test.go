package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/registry"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

func downstreamResponse(status int, body string, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestStreamReconstructorPassthrough(t *testing.T) {
	resp := downstreamResponse(http.StatusCreated, "event: message\ndata: {}\n\n", map[string]string{
		"Content-Type":    "text/event-stream",
		"X-Backend-Extra": "v",
	})

	rec := httptest.NewRecorder()
	if err := (StreamReconstructor{}).Reconstruct(rec, resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("expected content type preserved, got %q", got)
	}
	if got := rec.Header().Get("X-Backend-Extra"); got != "v" {
		t.Errorf("expected extra header preserved, got %q", got)
	}
	if rec.Body.String() != "event: message\ndata: {}\n\n" {
		t.Errorf("body altered: %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("expected body to be flushed")
	}
}

func TestJSONReconstructor(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		headers         map[string]string
		wantBodyJSON    string
		wantBodyRaw     string
		wantContentType string
	}{
		{
			name:            "json body re-emitted",
			status:          http.StatusOK,
			body:            `{"ok":true}`,
			headers:         map[string]string{"Content-Type": "application/json"},
			wantBodyJSON:    `{"ok":true}`,
			wantContentType: "application/json",
		},
		{
			name:            "downstream content type wins",
			status:          http.StatusOK,
			body:            `{"ok":true}`,
			headers:         map[string]string{"Content-Type": "application/json; charset=utf-8"},
			wantBodyJSON:    `{"ok":true}`,
			wantContentType: "application/json; charset=utf-8",
		},
		{
			name:            "non-json falls back to raw",
			status:          http.StatusBadGateway,
			body:            "upstream exploded",
			headers:         map[string]string{"Content-Type": "text/plain"},
			wantBodyRaw:     "upstream exploded",
			wantContentType: "text/plain",
		},
		{
			name:            "raw fallback default content type",
			status:          http.StatusOK,
			body:            "not json",
			wantBodyRaw:     "not json",
			wantContentType: "text/plain; charset=utf-8",
		},
		{
			name:            "error status preserved",
			status:          http.StatusNotFound,
			body:            `{"detail":"thread not found"}`,
			headers:         map[string]string{"Content-Type": "application/json"},
			wantBodyJSON:    `{"detail":"thread not found"}`,
			wantContentType: "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := downstreamResponse(tt.status, tt.body, tt.headers)

			rec := httptest.NewRecorder()
			if err := (JSONReconstructor{}).Reconstruct(rec, resp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantContentType {
				t.Errorf("expected content type %q, got %q", tt.wantContentType, got)
			}

			if tt.wantBodyJSON != "" {
				var got, want any
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("response body is not JSON: %v", err)
				}
				json.Unmarshal([]byte(tt.wantBodyJSON), &want)
				gotStr, _ := json.Marshal(got)
				wantStr, _ := json.Marshal(want)
				if string(gotStr) != string(wantStr) {
					t.Errorf("expected body %s, got %s", wantStr, gotStr)
				}
			} else if rec.Body.String() != tt.wantBodyRaw {
				t.Errorf("expected body %q, got %q", tt.wantBodyRaw, rec.Body.String())
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetail  bool
	}{
		{
			name:        "no session",
			err:         auth.ErrNoSession,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Authentication required",
		},
		{
			name:        "route disabled",
			err:         registry.ErrRouteDisabled,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Deployment proxying is not enabled",
		},
		{
			name:        "deployment not found",
			err:         &registry.DeploymentNotFoundError{ID: "x"},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Deployment not found",
		},
		{
			name:        "missing signing secret",
			err:         token.ErrNoSigningSecret,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to generate authentication token",
			wantDetail:  true,
		},
		{
			name:        "no target configured",
			err:         ErrNoTargetConfigured,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Proxy target is not configured",
			wantDetail:  true,
		},
		{
			name:        "downstream failure",
			err:         &DownstreamError{URL: "http://d1", Err: errors.New("connection refused")},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to reach upstream service",
			wantDetail:  true,
		},
		{
			name:        "unknown error is opaque",
			err:         errors.New("secret internal detail"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			status := WriteError(rec, tt.err)

			if status != tt.wantStatus || rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d/%d", tt.wantStatus, status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, body.Message)
			}
			if tt.wantDetail && body.Error == "" {
				t.Error("expected error detail to be present")
			}
			if !tt.wantDetail && body.Error != "" {
				t.Errorf("expected no error detail, got %q", body.Error)
			}
		})
	}
}
