package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/mineops/internal/backend"
	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/users"
	"github.com/go-chi/chi/v5"
)

// UserHandler fronts the backend user service. Lists are served from the
// directory's last-known copy when the backend cannot be reached.
type UserHandler struct {
	Directory *users.Directory
	Audit     repo.AuditSource
}

// backendFailure answers a failed backend call. A 4xx from the backend is
// passed through; anything else becomes 502.
func backendFailure(w http.ResponseWriter, op string, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		JSONError(w, apiErr.Body, apiErr.Status)
		return
	}
	slog.Error("backend request failed", "op", op, "err", err)
	JSONError(w, ErrMessageBackend, http.StatusBadGateway)
}

// changeResponse is the body of an accepted user change.
type changeResponse struct {
	Items   []models.User `json:"items"`
	Warning string        `json:"warning,omitempty"`
}

// changed reports whether a directory mutation reached the backend. A change
// whose follow-up fetch failed still counts and carries a warning.
func changed(w http.ResponseWriter, op string, err error) (warning string, ok bool) {
	if err == nil {
		return "", true
	}
	if errors.Is(err, users.ErrStale) {
		slog.Warn("users: change applied, list not refreshed", "op", op, "err", err)
		return "Change saved, but the user list could not be refreshed; showing last known list.", true
	}
	backendFailure(w, op, err)
	return "", false
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	schema := users.Schema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}

	list, err := h.Directory.Refresh(r.Context())
	warning := ""
	if err != nil {
		if _, loaded := h.Directory.Users(); !loaded {
			backendFailure(w, "list_users", err)
			return
		}
		slog.Warn("users: serving last-known list", "err", err)
		warning = "Failed to fetch users; showing last known list."
	}
	h.writeList(w, list, q, schema, warning)
}

func (h *UserHandler) writeList(w http.ResponseWriter, list []models.User, q listview.Query, schema listview.Schema[models.User], warning string) {
	page, err := schema.Run(list, q, nil)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := newListResponse(page, q, schema)
	resp.Warning = warning
	writeJSON(w, http.StatusOK, resp)
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	list, err := h.Directory.Add(r.Context(), input)
	warning, ok := changed(w, "create_user", err)
	if !ok {
		return
	}

	record(r.Context(), h.Audit, "Create User", fmt.Sprintf("%s (%s)", input.Username, input.Role))
	writeJSON(w, http.StatusCreated, changeResponse{Items: list, Warning: warning})
}

// ==========================
// Update User
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var input models.UserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	list, err := h.Directory.Update(r.Context(), id, input)
	warning, ok := changed(w, "update_user", err)
	if !ok {
		return
	}

	record(r.Context(), h.Audit, "Update User", fmt.Sprintf("user %d -> %s (%s)", id, input.Username, input.Role))
	writeJSON(w, http.StatusOK, changeResponse{Items: list, Warning: warning})
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	list, err := h.Directory.Delete(r.Context(), id)
	warning, ok := changed(w, "delete_user", err)
	if !ok {
		return
	}

	record(r.Context(), h.Audit, "Delete User", fmt.Sprintf("user %d", id))
	writeJSON(w, http.StatusOK, changeResponse{Items: list, Warning: warning})
}

// ==========================
// Bulk Action
// ==========================

// BulkAction applies {action} to every user currently loaded.
func (h *UserHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action string `json:"action" validate:"required,oneof=activate deactivate delete"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	before, _ := h.Directory.Users()
	list, err := h.Directory.Bulk(r.Context(), input.Action)
	warning, ok := changed(w, "bulk_users", err)
	if !ok {
		return
	}

	record(r.Context(), h.Audit, "Bulk User Action", fmt.Sprintf("%s on %d users", input.Action, len(before)))
	writeJSON(w, http.StatusOK, changeResponse{Items: list, Warning: warning})
}
