package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks GET and HEAD responses cacheable for maxAge seconds and
// everything else as no-store. Listings tolerate slightly stale aggregates.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	cacheable := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				w.Header().Set("Cache-Control", cacheable)
			default:
				w.Header().Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
