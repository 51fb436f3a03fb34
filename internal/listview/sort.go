package listview

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Direction is the sort order of a column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseDirection accepts "asc" or "desc" in any case; empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("sort order must be 'asc' or 'desc', got %q", s)
}

// Sort returns a new slice ordered by compare in the given direction. The
// sort is stable. When tie is non-nil it orders records that compare equal,
// always ascending.
func Sort[T any](items []T, compare func(a, b T) int, dir Direction, tie func(a, b T) int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if compare == nil {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(a, b)
		if dir == Desc {
			c = -c
		}
		if c == 0 && tie != nil {
			c = tie(a, b)
		}
		return c
	})
	return out
}

// By builds a comparator from an ordered key (numbers or strings).
func By[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// ByTime builds a chronological comparator.
func ByTime[T any](key func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return key(a).Compare(key(b))
	}
}

// ByFold orders strings case-insensitively, falling back to byte order so the
// result is still total.
func ByFold[T any](key func(T) string) func(a, b T) int {
	return func(a, b T) int {
		ka, kb := key(a), key(b)
		if c := strings.Compare(strings.ToLower(ka), strings.ToLower(kb)); c != 0 {
			return c
		}
		return strings.Compare(ka, kb)
	}
}
