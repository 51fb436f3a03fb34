package notifications

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/metrics"
	"github.com/crucial707/mineops/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrUnknownAction = errors.New("unknown bulk action")
	ErrUnknownFilter = errors.New("unknown filter")
)

// Bulk actions and list filters.
const (
	ActionRead   = "read"
	ActionUnread = "unread"
	ActionDelete = "delete"

	FilterAll    = "all"
	FilterRead   = "read"
	FilterUnread = "unread"
)

// Feed is the in-memory notification list, newest first.
type Feed struct {
	mu    sync.RWMutex
	items []models.Notification
	now   func() time.Time
}

func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

// Push prepends a new unread notification and returns it.
func (f *Feed) Push(message string) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: f.now().UTC(),
	}
	f.mu.Lock()
	f.items = append([]models.Notification{n}, f.items...)
	f.publish()
	f.mu.Unlock()
	return n
}

func (f *Feed) List() []models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.items)
}

// Unread counts notifications not yet read.
func (f *Feed) Unread() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.unread()
}

func (f *Feed) MarkRead(id string) error   { return f.set(id, true) }
func (f *Feed) MarkUnread(id string) error { return f.set(id, false) }

func (f *Feed) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.items = slices.Delete(f.items, i, i+1)
	f.publish()
	return nil
}

// Bulk applies action to every notification in the feed.
func (f *Feed) Bulk(action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch action {
	case ActionRead, ActionUnread:
		for i := range f.items {
			f.items[i].Read = action == ActionRead
		}
	case ActionDelete:
		f.items = nil
	default:
		return ErrUnknownAction
	}
	f.publish()
	return nil
}

func (f *Feed) set(id string, read bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.items[i].Read = read
	f.publish()
	return nil
}

func (f *Feed) index(id string) int {
	return slices.IndexFunc(f.items, func(n models.Notification) bool { return n.ID == id })
}

func (f *Feed) unread() int {
	n := 0
	for _, it := range f.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// publish must be called with mu held.
func (f *Feed) publish() {
	metrics.SetUnreadNotifications(f.unread())
}

// Match returns the predicate for a list filter; "all" and "" match everything.
func Match(filter string) (func(models.Notification) bool, error) {
	switch filter {
	case "", FilterAll:
		return nil, nil
	case FilterRead:
		return func(n models.Notification) bool { return n.Read }, nil
	case FilterUnread:
		return func(n models.Notification) bool { return !n.Read }, nil
	}
	return nil, ErrUnknownFilter
}

// Schema is the notifications list: search by message, newest first.
func Schema() listview.Schema[models.Notification] {
	return listview.Schema[models.Notification]{
		Search: []func(models.Notification) string{func(n models.Notification) string { return n.Message }},
		Sortable: map[string]func(a, b models.Notification) int{
			"timestamp": listview.ByTime(func(n models.Notification) time.Time { return n.Timestamp }),
			"message":   listview.By(func(n models.Notification) string { return n.Message }),
		},
		DefaultSort: "timestamp",
		DefaultDir:  listview.Desc,
		PageSize:    20,
		MaxPageSize: 200,
	}
}
