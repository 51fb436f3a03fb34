// Package users keeps the dashboard's last-known copy of the backend user
// list and applies mutations through the backend.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
)

var ErrUnknownAction = errors.New("unknown bulk action")

// ErrStale marks a mutation the backend accepted whose follow-up fetch
// failed. The list returned with it is the last-known one.
var ErrStale = errors.New("change applied but user list is stale")

// Backend is the slice of the backend client the directory needs.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) error
	UpdateUser(ctx context.Context, id int, in models.UserInput) error
	DeleteUser(ctx context.Context, id int) error
	BulkUserAction(ctx context.Context, action string, ids []int) error
}

// Directory caches the user list. Every fetch is tagged with a generation
// number; a response older than the newest one already applied is dropped,
// so overlapping refreshes never roll the list back.
type Directory struct {
	backend Backend

	mu      sync.RWMutex
	users   []models.User
	issued  uint64
	applied uint64
	loaded  bool
}

func NewDirectory(b Backend) *Directory {
	return &Directory{backend: b}
}

// Users returns the last-known list and whether any fetch has succeeded yet.
func (d *Directory) Users() ([]models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.users), d.loaded
}

// Refresh fetches the list. On failure the last-known list is returned
// alongside the error.
func (d *Directory) Refresh(ctx context.Context) ([]models.User, error) {
	d.mu.Lock()
	d.issued++
	gen := d.issued
	d.mu.Unlock()

	fetched, err := d.backend.ListUsers(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		return slices.Clone(d.users), fmt.Errorf("fetch users: %w", err)
	}
	if gen < d.applied {
		slog.Debug("users: dropped stale response", "generation", gen, "applied", d.applied)
		return slices.Clone(d.users), nil
	}
	d.applied = gen
	d.users = fetched
	d.loaded = true
	return slices.Clone(d.users), nil
}

func (d *Directory) Add(ctx context.Context, in models.UserInput) ([]models.User, error) {
	if err := d.backend.CreateUser(ctx, in); err != nil {
		return d.last(), fmt.Errorf("create user: %w", err)
	}
	return d.refreshAfterChange(ctx)
}

func (d *Directory) Update(ctx context.Context, id int, in models.UserInput) ([]models.User, error) {
	if err := d.backend.UpdateUser(ctx, id, in); err != nil {
		return d.last(), fmt.Errorf("update user %d: %w", id, err)
	}
	return d.refreshAfterChange(ctx)
}

func (d *Directory) Delete(ctx context.Context, id int) ([]models.User, error) {
	if err := d.backend.DeleteUser(ctx, id); err != nil {
		return d.last(), fmt.Errorf("delete user %d: %w", id, err)
	}
	return d.refreshAfterChange(ctx)
}

// Bulk applies action to every currently loaded user, then re-fetches.
func (d *Directory) Bulk(ctx context.Context, action string) ([]models.User, error) {
	switch action {
	case models.BulkActivate, models.BulkDeactivate, models.BulkDelete:
	default:
		return d.last(), ErrUnknownAction
	}

	current := d.last()
	ids := make([]int, len(current))
	for i, u := range current {
		ids[i] = u.ID
	}
	if err := d.backend.BulkUserAction(ctx, action, ids); err != nil {
		return current, fmt.Errorf("bulk %s: %w", action, err)
	}
	return d.refreshAfterChange(ctx)
}

func (d *Directory) refreshAfterChange(ctx context.Context) ([]models.User, error) {
	list, err := d.Refresh(ctx)
	if err != nil {
		return list, fmt.Errorf("%w: %w", ErrStale, err)
	}
	return list, nil
}

func (d *Directory) last() []models.User {
	u, _ := d.Users()
	return u
}

// Schema is the user management table.
func Schema() listview.Schema[models.User] {
	return listview.Schema[models.User]{
		Search: []func(models.User) string{
			func(u models.User) string { return u.Username },
			func(u models.User) string { return u.Email },
			func(u models.User) string { return string(u.Role) },
		},
		Sortable: map[string]func(a, b models.User) int{
			"id":       listview.By(func(u models.User) int { return u.ID }),
			"username": listview.ByFold(func(u models.User) string { return u.Username }),
			"email":    listview.ByFold(func(u models.User) string { return u.Email }),
			"role":     listview.By(func(u models.User) string { return string(u.Role) }),
		},
		TieBreak:    listview.By(func(u models.User) int { return u.ID }),
		DefaultSort: "username",
		DefaultDir:  listview.Asc,
		PageSize:    10,
		MaxPageSize: 100,
	}
}
