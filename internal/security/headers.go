package security

import (
	"net/http"
)

// HeadersMiddleware adds security headers to all responses. The server only
// answers JSON and report downloads, so nothing may be framed or executed.
func HeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Reports contain sales figures
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
