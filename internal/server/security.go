package server

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig controls the headers and methods applied by
// SecurityMiddleware.
type SecurityConfig struct {
	// AllowedMethods lists the HTTP methods the endpoints answer. Other
	// methods get 405 Method Not Allowed.
	AllowedMethods []string
	// ContentSecurityPolicy is sent verbatim when non-empty.
	ContentSecurityPolicy string
}

// DefaultSecurityConfig returns the configuration used by the metrics
// server: read-only methods and a CSP that forbids any embedding.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AllowedMethods:        []string{http.MethodGet, http.MethodHead},
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	}
}

// SecurityMiddleware sets defensive response headers and rejects methods
// outside config.AllowedMethods.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	allow := strings.Join(config.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		if config.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
		}

		if len(config.AllowedMethods) > 0 && !slices.Contains(config.AllowedMethods, r.Method) {
			h.Set("Allow", allow)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
