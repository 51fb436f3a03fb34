package listview

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidSortField is returned when a query sorts by a field the schema does not know.
var ErrInvalidSortField = errors.New("invalid sort field")

// Query is the decoded state of a list request.
type Query struct {
	Search    string
	SortField string
	Dir       Direction
	Page      int
	Size      int
}

// FieldErrors maps a query parameter to what is wrong with it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid list query: " + strings.Join(parts, ", ")
}

// ParseSort splits "field" or "field:order". An empty string means no explicit sort.
func ParseSort(s string) (string, Direction, error) {
	if s == "" {
		return "", "", nil
	}
	field, order, found := strings.Cut(s, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return "", "", errors.New("sort field cannot be empty")
	}
	if !found {
		return field, Asc, nil
	}
	dir, err := ParseDirection(order)
	if err != nil {
		return "", "", err
	}
	return field, dir, nil
}

// ParseQuery decodes q, sort, page and size from URL values and checks them
// against the schema. All problems are reported together as FieldErrors.
func ParseQuery[T any](v url.Values, s Schema[T]) (Query, error) {
	q := Query{Search: v.Get("q"), Page: 1}
	fields := FieldErrors{}

	field, dir, err := ParseSort(v.Get("sort"))
	switch {
	case err != nil:
		fields["sort"] = err.Error()
	case !s.CanSort(field):
		fields["sort"] = fmt.Sprintf("unknown field %q (valid: %s)", field, strings.Join(s.Fields(), ", "))
	default:
		q.SortField, q.Dir = field, dir
	}

	if p := v.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			fields["page"] = "must be an integer >= 1"
		} else {
			q.Page = n
		}
	}

	if sz := v.Get("size"); sz != "" {
		n, err := strconv.Atoi(sz)
		switch {
		case err != nil || n < 1:
			fields["size"] = "must be an integer >= 1"
		case s.MaxPageSize > 0 && n > s.MaxPageSize:
			fields["size"] = fmt.Sprintf("must be <= %d", s.MaxPageSize)
		default:
			q.Size = n
		}
	}

	if len(fields) > 0 {
		return q, fields
	}
	return q, nil
}

// Values encodes q back to URL values; the CLI uses it to build requests.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.SortField != "" {
		dir := q.Dir
		if dir == "" {
			dir = Asc
		}
		v.Set("sort", q.SortField+":"+string(dir))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	return v
}
