package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/go-chi/chi/v5"
)

// DraftHandler saves unfinished forms so an operator can resume them.
type DraftHandler struct {
	Repo *repo.DraftRepo
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.Repo.Load(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SaveDraft stores the raw body. It must decode into the form the key
// belongs to, but required fields may still be empty.
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !repo.ValidDraftKey(key) {
		h.fail(w, repo.ErrInvalidKey)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if middleware.TooLarge(err) {
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		JSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var shape any
	switch key {
	case repo.DraftShiftLog:
		shape = &models.ShiftLog{}
	case repo.DraftSafetyPlan:
		shape = &[]models.SafetyPlanRow{}
	}
	if err := json.Unmarshal(body, shape); err != nil {
		JSONValidationError(w, "invalid draft", map[string]string{"body": err.Error()}, http.StatusBadRequest)
		return
	}

	d, err := h.Repo.Save(r.Context(), key, body)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrInvalidKey):
		JSONError(w, "unknown draft key", http.StatusNotFound)
	case errors.Is(err, repo.ErrDraftNotFound):
		JSONError(w, "draft not found", http.StatusNotFound)
	default:
		slog.Error("drafts: storage failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
