package middleware

// contextKey is a private key type so middleware context values cannot
// collide with other packages.
type contextKey string

// RequestIDKey stores the correlation id assigned by RequestIDMiddleware.
const RequestIDKey contextKey = "request_id"
