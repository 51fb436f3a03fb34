package repo

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
)

// AuditSource supplies the audit log view and records dashboard mutations.
type AuditSource interface {
	List(ctx context.Context) ([]models.AuditEntry, error)
	Record(ctx context.Context, e models.AuditEntry) error
}

// ==========================
// PostgreSQL
// ==========================

// AuditRepo persists audit log entries in PostgreSQL.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Record inserts e. A zero Timestamp lets the database stamp the row.
func (r *AuditRepo) Record(ctx context.Context, e models.AuditEntry) error {
	var ts any
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (username, action, details, created_at) VALUES ($1, $2, $3, COALESCE($4, NOW()))`,
		e.User, e.Action, e.Details, ts,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// List returns every audit entry in insertion order; the view sorts.
func (r *AuditRepo) List(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, action, COALESCE(details,''), created_at FROM audit_log ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.User, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==========================
// In memory
// ==========================

// MemoryAuditRepo keeps the audit log in process. It is used when no audit
// database is configured and starts with SeedAudit.
type MemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	now     func() time.Time
}

func NewMemoryAuditRepo(seed []models.AuditEntry) *MemoryAuditRepo {
	return &MemoryAuditRepo{entries: slices.Clone(seed), now: time.Now}
}

func (r *MemoryAuditRepo) List(context.Context) ([]models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries), nil
}

func (r *MemoryAuditRepo) Record(_ context.Context, e models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = 1
	if n := len(r.entries); n > 0 {
		e.ID = r.entries[n-1].ID + 1
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}
	r.entries = append(r.entries, e)
	return nil
}

// SeedAudit returns the entries the dashboard shows before any activity.
func SeedAudit() []models.AuditEntry {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.DateTime, s)
		return t
	}
	return []models.AuditEntry{
		{ID: 1, User: "John Doe", Action: "Login", Timestamp: at("2024-09-20 12:34:56"), Details: "User logged into the system."},
		{ID: 2, User: "Jane Smith", Action: "Create Project", Timestamp: at("2024-09-20 14:12:45"), Details: `New project "Coal Mine Safety" created.`},
		{ID: 3, User: "Peter Mwangi", Action: "Update Inventory", Timestamp: at("2024-09-21 08:05:10"), Details: "Coal available raised to 50."},
		{ID: 4, User: "Jane Smith", Action: "Login", Timestamp: at("2024-09-21 09:41:02"), Details: "User logged into the system."},
		{ID: 5, User: "John Doe", Action: "Create User", Timestamp: at("2024-09-21 10:17:33"), Details: "Added worker account for A. Otieno."},
		{ID: 6, User: "Grace Njeri", Action: "Submit Shift Log", Timestamp: at("2024-09-21 18:00:00"), Details: "Night shift handover submitted."},
		{ID: 7, User: "Peter Mwangi", Action: "Logout", Timestamp: at("2024-09-21 18:30:12"), Details: "User logged out."},
	}
}

// AuditActions lists the distinct actions in entries, in first-seen order.
func AuditActions(entries []models.AuditEntry) []string {
	var out []string
	for _, e := range entries {
		if !slices.Contains(out, e.Action) {
			out = append(out, e.Action)
		}
	}
	return out
}

// AuditSchema is the audit log view: search user, action and details; sort
// by user or timestamp; five rows per page.
func AuditSchema() listview.Schema[models.AuditEntry] {
	return listview.Schema[models.AuditEntry]{
		Search: []func(models.AuditEntry) string{
			func(e models.AuditEntry) string { return e.User },
			func(e models.AuditEntry) string { return e.Action },
			func(e models.AuditEntry) string { return e.Details },
		},
		Sortable: map[string]func(a, b models.AuditEntry) int{
			"user":      listview.ByFold(func(e models.AuditEntry) string { return e.User }),
			"action":    listview.ByFold(func(e models.AuditEntry) string { return e.Action }),
			"timestamp": listview.ByTime(func(e models.AuditEntry) time.Time { return e.Timestamp }),
		},
		TieBreak:    listview.By(func(e models.AuditEntry) int { return e.ID }),
		DefaultSort: "timestamp",
		DefaultDir:  listview.Asc,
		PageSize:    5,
		MaxPageSize: 25,
	}
}

// ActionIs matches entries whose action equals action exactly.
func ActionIs(action string) func(models.AuditEntry) bool {
	return func(e models.AuditEntry) bool { return e.Action == action }
}
