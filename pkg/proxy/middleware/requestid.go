package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id between the chat UI, the proxy
// logs, and the forwarded backend request.
const RequestIDHeader = "X-Request-ID"

// maxInboundRequestIDLen caps caller-supplied ids so a hostile client cannot
// stuff arbitrary payloads into log lines.
const maxInboundRequestIDLen = 64

// RequestIDMiddleware assigns every request a correlation id. An id supplied
// by the caller in X-Request-ID is honored so the chat UI can trace a request
// end to end; otherwise a fresh UUID is minted. The id is stored on the
// request context, echoed on the response, and travels upstream with the
// forwarded request headers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxInboundRequestIDLen {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the correlation id stored by RequestIDMiddleware, or
// "" when the request did not pass through it.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
