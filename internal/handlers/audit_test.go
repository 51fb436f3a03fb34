package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
)

type auditBody struct {
	Items      []models.AuditEntry `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalItems int                 `json:"total_items"`
	Action     string              `json:"action"`
	Actions    []string            `json:"actions"`
}

func TestAuditHandler_ListAudit_Defaults(t *testing.T) {
	h := &AuditHandler{Source: repo.NewMemoryAuditRepo(repo.SeedAudit())}

	rr := httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/v1/audit", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var out auditBody
	decodeBody(t, rr, &out)
	if out.PageSize != 5 || len(out.Items) != 5 || out.TotalItems != len(repo.SeedAudit()) {
		t.Errorf("unexpected page: size %d, %d items of %d", out.PageSize, len(out.Items), out.TotalItems)
	}
	if len(out.Actions) == 0 {
		t.Error("actions should list the filter values")
	}
}

func TestAuditHandler_ListAudit_ActionFilterAndSearch(t *testing.T) {
	h := &AuditHandler{Source: repo.NewMemoryAuditRepo(repo.SeedAudit())}

	rr := httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/v1/audit?action=Login&sort=user:desc", nil))
	var out auditBody
	decodeBody(t, rr, &out)
	if out.TotalItems != 2 || out.Action != "Login" {
		t.Fatalf("Login filter: got %d entries (action %q)", out.TotalItems, out.Action)
	}
	if out.Items[0].User != "Jane Smith" {
		t.Errorf("desc by user: first is %q", out.Items[0].User)
	}

	rr = httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/v1/audit?q=coal%20mine", nil))
	out = auditBody{}
	decodeBody(t, rr, &out)
	if out.TotalItems != 1 || out.Items[0].Action != "Create Project" {
		t.Errorf("search: got %+v", out.Items)
	}
}

func TestAuditHandler_ListAudit_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, action`).
		WillReturnError(errors.New("connection reset"))

	h := &AuditHandler{Source: repo.NewAuditRepo(db)}
	rr := httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/v1/audit", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditHandler_ListAudit_BadPage(t *testing.T) {
	h := &AuditHandler{Source: repo.NewMemoryAuditRepo(nil)}

	rr := httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/v1/audit?page=zero&size=500", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out validationBody
	decodeBody(t, rr, &out)
	if out.Fields["page"] == "" || out.Fields["size"] == "" {
		t.Errorf("expected page and size errors, got %+v", out.Fields)
	}
}

func TestRecord_UsesOperator(t *testing.T) {
	audit := repo.NewMemoryAuditRepo(nil)
	ctx := context.Background()
	record(ctx, audit, "Clear Resources", "")
	entries, _ := audit.List(ctx)
	if len(entries) != 1 || entries[0].User != "anonymous" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
