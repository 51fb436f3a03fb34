package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Draft keys accepted by DraftRepo.
const (
	DraftSafetyPlan = "smpDraft"
	DraftShiftLog   = "shiftHandoverLogData"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrInvalidKey    = errors.New("invalid draft key")
)

// DraftKeys lists the keys in the order they are reported.
var DraftKeys = []string{DraftSafetyPlan, DraftShiftLog}

func ValidDraftKey(key string) bool {
	return slices.Contains(DraftKeys, key)
}

// Draft is one saved form body.
type Draft struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DraftRepo stores unfinished form bodies in SQLite, one row per key.
type DraftRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewDraftRepo(db *sql.DB) *DraftRepo {
	return &DraftRepo{db: db, now: time.Now}
}

// Save overwrites the draft under key. payload must be valid JSON.
func (r *DraftRepo) Save(ctx context.Context, key string, payload json.RawMessage) (*Draft, error) {
	if !ValidDraftKey(key) {
		return nil, ErrInvalidKey
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("save draft %s: payload is not valid JSON", key)
	}

	d := &Draft{Key: key, Payload: payload, UpdatedAt: r.now().UTC()}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		d.Key, string(d.Payload), d.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("save draft %s: %w", key, err)
	}
	return d, nil
}

func (r *DraftRepo) Load(ctx context.Context, key string) (*Draft, error) {
	if !ValidDraftKey(key) {
		return nil, ErrInvalidKey
	}

	var (
		payload string
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, updated_at FROM drafts WHERE key = ?`, key,
	).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", key, err)
	}
	return &Draft{Key: key, Payload: json.RawMessage(payload), UpdatedAt: time.Unix(0, updated).UTC()}, nil
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (r *DraftRepo) Delete(ctx context.Context, key string) error {
	if !ValidDraftKey(key) {
		return ErrInvalidKey
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}

// Purge drops drafts last saved before now minus ttl and reports how many.
func (r *DraftRepo) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := r.now().UTC().Add(-ttl)
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE updated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return res.RowsAffected()
}
