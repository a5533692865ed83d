package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingCapturesStatusAndBytes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"Failed to connect to backend"}`))
	})
	wrapped := LoggingMiddleware(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 passed through", rec.Code)
	}
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if _, err := rw.Write([]byte("chunk")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want implicit 200", rw.statusCode)
	}
	if rw.bytes != int64(len("chunk")) {
		t.Errorf("bytes = %d, want %d", rw.bytes, len("chunk"))
	}
}

func TestResponseWriterIgnoresSecondWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want first write wins", rw.statusCode)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("recorded status = %d, want 404", rec.Code)
	}
}

func TestResponseWriterFlushesThroughController(t *testing.T) {
	// Streamed agent runs flush per chunk via http.NewResponseController,
	// which must reach the underlying Flusher through Unwrap.
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rc := http.NewResponseController(rw)
	if _, err := rw.Write([]byte("event: data\n\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := rc.Flush(); err != nil {
		t.Fatalf("flush through wrapper failed: %v", err)
	}
	if !rec.Flushed {
		t.Error("flush did not reach the underlying writer")
	}
}
