package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
)

func TestAuditRepo_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log \(username, action, details, created_at\)`).
		WithArgs("alice", "Delete Resource", "Coal", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAuditRepo(db)
	err = repo.Record(context.Background(), models.AuditEntry{User: "alice", Action: "Delete Resource", Details: "Coal"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	ts := time.Date(2024, 9, 20, 12, 34, 56, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, action, COALESCE\(details,''\), created_at FROM audit_log`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "action", "details", "created_at"}).
			AddRow(1, "John Doe", "Login", "User logged into the system.", ts).
			AddRow(2, "Jane Smith", "Create Project", "", ts.Add(time.Hour)))

	entries, err := NewAuditRepo(db).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].User != "John Doe" || !entries[0].Timestamp.Equal(ts) {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditRepo_List_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT id, username`).WillReturnError(boom)

	_, err = NewAuditRepo(db).List(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}

func TestMemoryAuditRepo_Record(t *testing.T) {
	repo := NewMemoryAuditRepo(SeedAudit())
	now := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Record(context.Background(), models.AuditEntry{User: "anonymous", Action: "Clear Resources"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, _ := repo.List(context.Background())
	last := entries[len(entries)-1]
	if last.ID != len(SeedAudit())+1 || !last.Timestamp.Equal(now) {
		t.Errorf("unexpected recorded entry: %+v", last)
	}
}

func TestAuditSchema_FilterThenClear(t *testing.T) {
	entries := SeedAudit()
	v := listview.NewView(AuditSchema())

	v.SetMatch("Login", ActionIs("Login"))
	p := v.Apply(entries)
	if p.TotalItems != 2 {
		t.Fatalf("expected 2 Login entries, got %d", p.TotalItems)
	}
	for _, e := range p.Items {
		if e.Action != "Login" {
			t.Errorf("filter leaked %q", e.Action)
		}
	}

	v.Next()
	v.ClearMatch()
	p = v.Apply(entries)
	if p.TotalItems != len(entries) || p.Page != 1 {
		t.Errorf("clear should restore %d entries on page 1, got %d on page %d", len(entries), p.TotalItems, p.Page)
	}
}

func TestAuditActions(t *testing.T) {
	got := AuditActions(SeedAudit())
	if len(got) == 0 || got[0] != "Login" || got[1] != "Create Project" {
		t.Errorf("unexpected actions: %v", got)
	}
	for i, a := range got {
		for _, b := range got[i+1:] {
			if a == b {
				t.Errorf("duplicate action %q", a)
			}
		}
	}
}
