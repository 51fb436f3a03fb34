package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
)

// FormsBackend is the part of the backend that takes form submissions.
type FormsBackend interface {
	PreviousShiftLogs(ctx context.Context) ([]json.RawMessage, error)
	SubmitShiftLog(ctx context.Context, log models.ShiftLog, file *models.Attachment) error
	SubmitSafetyPlan(ctx context.Context, rows []models.SafetyPlanRow, file *models.Attachment) error
}

// FormsHandler validates shift handover logs and safety management plans,
// forwards them to the backend and clears the matching draft on success.
type FormsHandler struct {
	Backend FormsBackend
	Drafts  *repo.DraftRepo
	Audit   repo.AuditSource
}

var errBadAttachment = errors.New("attachment must be an image or a PDF")

// ==========================
// Shift Logs
// ==========================
func (h *FormsHandler) PreviousShiftLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Backend.PreviousShiftLogs(r.Context())
	if err != nil {
		backendFailure(w, "previous_logs", err)
		return
	}
	if logs == nil {
		logs = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// SubmitShiftLog accepts multipart/form-data (with an optional "file") or a
// JSON body.
func (h *FormsHandler) SubmitShiftLog(w http.ResponseWriter, r *http.Request) {
	var (
		log  models.ShiftLog
		file *models.Attachment
	)
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		log = models.ShiftLog{
			ShiftDetails:    r.FormValue("shiftDetails"),
			SafetyIssues:    r.FormValue("safetyIssues"),
			NextShiftTasks:  r.FormValue("nextShiftTasks"),
			AdditionalNotes: r.FormValue("additionalNotes"),
		}
		var err error
		if file, err = attachment(r); err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"file": err.Error()}, http.StatusBadRequest)
			return
		}
	} else if !decodeJSON(w, r, &log) {
		return
	}

	if err := validate.Struct(log); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	if err := h.Backend.SubmitShiftLog(r.Context(), log, file); err != nil {
		backendFailure(w, "submit_shift_log", err)
		return
	}

	h.clearDraft(r.Context(), repo.DraftShiftLog)
	record(r.Context(), h.Audit, "Submit Shift Log", summary(log.ShiftDetails))
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Log submitted successfully!"})
}

// ==========================
// Safety Plan
// ==========================

// SubmitSafetyPlan accepts multipart/form-data carrying the rows as the
// smpData JSON field (plus an optional "file"), or the rows as a JSON body.
func (h *FormsHandler) SubmitSafetyPlan(w http.ResponseWriter, r *http.Request) {
	var (
		plan models.SafetyPlan
		file *models.Attachment
	)
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("smpData")), &plan.Rows); err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"smpData": "must be a JSON array of plan rows"}, http.StatusBadRequest)
			return
		}
		var err error
		if file, err = attachment(r); err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"file": err.Error()}, http.StatusBadRequest)
			return
		}
	} else if !decodeJSON(w, r, &plan.Rows) {
		return
	}

	if err := validate.Struct(plan); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	if err := h.Backend.SubmitSafetyPlan(r.Context(), plan.Rows, file); err != nil {
		backendFailure(w, "submit_safety_plan", err)
		return
	}

	h.clearDraft(r.Context(), repo.DraftSafetyPlan)
	record(r.Context(), h.Audit, "Submit Safety Plan", fmt.Sprintf("%d risks", len(plan.Rows)))
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Safety Management Plan submitted successfully!"})
}

func (h *FormsHandler) clearDraft(ctx context.Context, key string) {
	if h.Drafts == nil {
		return
	}
	if err := h.Drafts.Delete(ctx, key); err != nil {
		slog.Warn("forms: could not clear draft", "key", key, "err", err)
	}
}

// ===== multipart helpers =====

func isMultipart(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "multipart/form-data"
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseMultipartForm(middleware.MaxUploadBytes)
	switch {
	case err == nil:
		return true
	case middleware.TooLarge(err):
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
	default:
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
	}
	return false
}

// attachment reads the optional "file" part. Only images and PDFs are accepted.
func attachment(r *http.Request) (*models.Attachment, error) {
	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ct := hdr.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return nil, errBadAttachment
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &models.Attachment{Filename: hdr.Filename, ContentType: ct, Data: data}, nil
}

func summary(s string) string {
	const limit = 80
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
