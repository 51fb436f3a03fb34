package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type key string

const UserKey key = "user"

// Anonymous is the operator name used when a request carries no valid token.
const Anonymous = "anonymous"

// Identity reads an optional Bearer token and, when it verifies, stores the
// operator name in the request context. It never rejects a request: the
// dashboard does not enforce access control, the name is only used to
// attribute audit entries.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if name, _ := claims["username"].(string); name != "" {
					r = r.WithContext(WithUser(r.Context(), name))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the operator name set by Identity.
func GetUser(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UserKey).(string)
	return name, ok
}

// UserOrAnonymous is GetUser with the Anonymous fallback.
func UserOrAnonymous(ctx context.Context) string {
	if name, ok := GetUser(ctx); ok {
		return name
	}
	return Anonymous
}

// WithUser returns ctx carrying name as the operator.
func WithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, UserKey, name)
}
