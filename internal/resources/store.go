package resources

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
)

var (
	// ErrNotFound is returned for an id that is not in the store.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalid is returned for a resource that breaks the store invariants.
	ErrInvalid = errors.New("invalid resource")
)

// Seed is the resource list every fresh dashboard starts with.
func Seed() []models.Resource {
	return []models.Resource{
		{ID: 1, Name: "Coal", Used: 10, Available: 50},
		{ID: 2, Name: "Water", Used: 20, Available: 30},
		{ID: 3, Name: "Electricity", Used: 25, Available: 15},
		{ID: 4, Name: "Labor", Used: 40, Available: 5},
	}
}

// Store is the single owner of the resource list shared by the inventory and
// resources views. Every method is atomic; concurrent writers are
// last-write-wins and readers always get a copy.
type Store struct {
	mu     sync.RWMutex
	items  []models.Resource
	nextID int
}

// NewStore returns a store holding a copy of initial.
func NewStore(initial []models.Resource) *Store {
	s := &Store{items: slices.Clone(initial), nextID: 1}
	for _, r := range initial {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

func (s *Store) List() []models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Get(id int) (models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return models.Resource{}, ErrNotFound
}

// Add appends a resource with the next free id.
func (s *Store) Add(in models.ResourceInput) (models.Resource, error) {
	if err := check(in); err != nil {
		return models.Resource{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := models.Resource{ID: s.nextID, Name: strings.TrimSpace(in.Name), Used: in.Used, Available: in.Available}
	s.nextID++
	s.items = append(s.items, r)
	return r, nil
}

// Update replaces the resource with the given id, keeping its position.
func (s *Store) Update(id int, in models.ResourceInput) (models.Resource, error) {
	if err := check(in); err != nil {
		return models.Resource{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Resource{}, ErrNotFound
	}
	s.items[i] = models.Resource{ID: id, Name: strings.TrimSpace(in.Name), Used: in.Used, Available: in.Available}
	return s.items[i], nil
}

func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Clear removes every resource. Ids are not reused afterwards.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// ClearUsed removes resources with nothing left available and reports how
// many were dropped.
func (s *Store) ClearUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, UsedUp)
	return before - len(s.items)
}

// UsedUp reports whether r has no quantity left.
func UsedUp(r models.Resource) bool { return r.Available == 0 }

// InStock reports whether r still has quantity available.
func InStock(r models.Resource) bool { return r.Available > 0 }

// Total sums Available over items.
func Total(items []models.Resource) int {
	total := 0
	for _, r := range items {
		total += r.Available
	}
	return total
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.items, func(r models.Resource) bool { return r.ID == id })
}

func check(in models.ResourceInput) error {
	if strings.TrimSpace(in.Name) == "" || in.Used < 0 || in.Available < 0 {
		return ErrInvalid
	}
	return nil
}

// Schema is the inventory table: search by name, sort by quantity or name,
// ties broken by name ascending.
func Schema() listview.Schema[models.Resource] {
	name := func(r models.Resource) string { return r.Name }
	return listview.Schema[models.Resource]{
		Search: []func(models.Resource) string{name},
		Sortable: map[string]func(a, b models.Resource) int{
			"available": listview.By(func(r models.Resource) int { return r.Available }),
			"used":      listview.By(func(r models.Resource) int { return r.Used }),
			"name":      listview.ByFold(name),
			"id":        listview.By(func(r models.Resource) int { return r.ID }),
		},
		TieBreak:    listview.ByFold(name),
		DefaultSort: "available",
		DefaultDir:  listview.Asc,
		PageSize:    5,
		MaxPageSize: 100,
	}
}
