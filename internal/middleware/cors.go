package middleware

import (
	"net/http"
	"slices"
	"strings"
)

var (
	// DefaultCORSAllowedMethods is the default set of methods allowed for CORS.
	DefaultCORSAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	// DefaultCORSAllowedHeaders is the default set of request headers allowed for CORS.
	DefaultCORSAllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}
	// DefaultCORSExposedHeaders lets browser clients read the export file name.
	DefaultCORSExposedHeaders = []string{"Content-Disposition"}
)

// CORS sets CORS response headers and answers preflight requests for the
// listed origins. "*" allows any origin. With no origins it is a no-op.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	wildcard := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			origin := r.Header.Get("Origin")
			if origin != "" && (wildcard || slices.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(DefaultCORSAllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(DefaultCORSAllowedHeaders, ", "))
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(DefaultCORSExposedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
