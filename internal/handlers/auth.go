package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/golang-jwt/jwt/v5"
)

// ==========================
// Auth Handler
// ==========================

// AuthHandler issues identity tokens. Login is simulated: any operator
// name is accepted and no password is checked. The token only names the
// operator for audit attribution.
type AuthHandler struct {
	Secret []byte
	TTL    time.Duration
	Audit  repo.AuditSource
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	ttl := h.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expires := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"username": input.Username,
		"exp":      expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	r = r.WithContext(middleware.WithUser(r.Context(), input.Username))
	record(r.Context(), h.Audit, "Login", "User logged into the system.")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      signed,
		"user":       input.Username,
		"expires_at": expires.UTC(),
	})
}
