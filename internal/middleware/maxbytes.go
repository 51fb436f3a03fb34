package middleware

import (
	"errors"
	"net/http"
)

const (
	// DefaultMaxBodyBytes caps JSON bodies (1 MiB).
	DefaultMaxBodyBytes = 1 << 20
	// MaxUploadBytes caps multipart form submissions with an attachment (10 MiB).
	MaxUploadBytes = 10 << 20
)

// MaxBytes limits the request body size. Reads past the limit fail with
// *http.MaxBytesError; handlers map that to 413 with TooLarge.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TooLarge reports whether err came from a body cut off by MaxBytes.
func TooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
