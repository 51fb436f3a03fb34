package listview

import (
	"fmt"
	"slices"
)

// Schema describes how one record type moves through the pipeline.
type Schema[T any] struct {
	// Search lists the text fields matched by the search box.
	Search []func(T) string
	// Sortable maps a field name to its natural-order comparator.
	Sortable map[string]func(a, b T) int
	// TieBreak orders records whose sort keys are equal. Nil keeps arrival order.
	TieBreak func(a, b T) int

	DefaultSort string
	DefaultDir  Direction
	PageSize    int
	MaxPageSize int
}

// Fields returns the sortable field names in a stable order.
func (s Schema[T]) Fields() []string {
	fields := make([]string, 0, len(s.Sortable))
	for f := range s.Sortable {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// CanSort reports whether field is sortable. The empty field means "no sort".
func (s Schema[T]) CanSort(field string) bool {
	if field == "" {
		return true
	}
	_, ok := s.Sortable[field]
	return ok
}

func (s Schema[T]) pageSize(n int) int {
	if n < 1 {
		n = s.PageSize
	}
	if n < 1 {
		n = DefaultPageSize
	}
	if s.MaxPageSize > 0 && n > s.MaxPageSize {
		n = s.MaxPageSize
	}
	return n
}

// Run applies match, search, sort and paginate in that order.
func (s Schema[T]) Run(items []T, q Query, match func(T) bool) (Page[T], error) {
	field := q.SortField
	dir := q.Dir
	if field == "" {
		field = s.DefaultSort
		if dir == "" {
			dir = s.DefaultDir
		}
	}
	if !s.CanSort(field) {
		return Page[T]{}, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}

	out := Where(items, match)
	out = Filter(out, q.Search, s.Search...)
	if field != "" {
		out = Sort(out, s.Sortable[field], dir, s.TieBreak)
	}
	return Paginate(out, q.Page, s.pageSize(q.Size)), nil
}
