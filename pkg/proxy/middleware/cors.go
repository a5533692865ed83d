package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig contains configuration for the CORS middleware.
//
// The proxy is called cross-origin by the browser chat UI, which
// authenticates with a session cookie. Cookie-carrying requests are
// "credentialed" in CORS terms, so AllowCredentials defaults to true in the
// server configuration and the wildcard origin is echoed rather than sent
// literally (browsers reject a literal "*" on credentialed responses).
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted at all.
	Enabled bool

	// AllowedOrigins lists the origins permitted to call the proxy.
	// A "*" entry admits any origin.
	AllowedOrigins []string

	// AllowedMethods is advertised on preflight responses. The proxy
	// forwards every method, so this normally lists all of them.
	AllowedMethods []string

	// AllowedHeaders is advertised on preflight responses.
	AllowedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int

	// AllowCredentials permits cookies on cross-origin requests. Required
	// for session-cookie authentication.
	AllowCredentials bool
}

// CORSMiddleware emits CORS headers for the browser chat UI.
//
// A preflight is an OPTIONS request carrying Access-Control-Request-Method;
// it is answered here with 204 and never forwarded. A plain OPTIONS request
// without that header is an ordinary proxied method and passes through to
// the handler chain like any other.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	// Advertised values never change per request; join them once.
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)
	wildcard := slices.Contains(config.AllowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			allowed := origin != "" &&
				(wildcard || slices.Contains(config.AllowedOrigins, origin))

			if allowed {
				h := w.Header()
				if wildcard && !config.AllowCredentials {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					// Credentialed responses must name the origin.
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				// The chat UI reads the request id off responses for
				// support correlation.
				h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			}

			if r.Method == http.MethodOptions &&
				r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					h := w.Header()
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					if config.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
