package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
)

// AuditHandler serves the audit log view.
type AuditHandler struct {
	Source repo.AuditSource
}

type auditListResponse struct {
	listResponse[models.AuditEntry]
	Action  string   `json:"action,omitempty"`
	Actions []string `json:"actions"`
}

// ListAudit answers GET /v1/audit?q&action&sort&page&size. action is an
// exact-match filter; Actions lists the values a client can offer for it.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	schema := repo.AuditSchema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}

	entries, err := h.Source.List(r.Context())
	if err != nil {
		slog.Error("audit: list failed", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	action := r.URL.Query().Get("action")
	var match func(models.AuditEntry) bool
	if action != "" {
		match = repo.ActionIs(action)
	}

	page, err := schema.Run(entries, q, match)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, auditListResponse{
		listResponse: newListResponse(page, q, schema),
		Action:       action,
		Actions:      repo.AuditActions(entries),
	})
}

// record appends an audit entry attributed to the request's operator.
// Failures are logged; they never fail the mutation that triggered them.
func record(ctx context.Context, src repo.AuditSource, action, details string) {
	if src == nil {
		return
	}
	e := models.AuditEntry{User: middleware.UserOrAnonymous(ctx), Action: action, Details: details}
	if err := src.Record(ctx, e); err != nil {
		slog.Warn("audit: record failed", "action", action, "err", err)
	}
}

