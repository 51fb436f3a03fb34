package listview

// View holds the interactive state of one table: search text, an optional
// exact-match filter, the sort column and direction, and the current page.
// Every input that changes which records are visible sends the table back to
// page 1.
type View[T any] struct {
	schema Schema[T]
	query  Query

	match      func(T) bool
	matchLabel string
}

// NewView starts a view on page 1 with the schema's default sort and page size.
func NewView[T any](s Schema[T]) *View[T] {
	return &View[T]{
		schema: s,
		query: Query{
			SortField: s.DefaultSort,
			Dir:       s.DefaultDir,
			Page:      1,
			Size:      s.pageSize(0),
		},
	}
}

func (v *View[T]) Query() Query { return v.query }

func (v *View[T]) Schema() Schema[T] { return v.schema }

// MatchLabel names the active exact-match filter, or "" when none is set.
func (v *View[T]) MatchLabel() string { return v.matchLabel }

func (v *View[T]) SetQuery(search string) {
	v.query.Search = search
	v.query.Page = 1
}

// SetMatch installs an exact-match filter such as "action is Login".
func (v *View[T]) SetMatch(label string, match func(T) bool) {
	v.match = match
	v.matchLabel = label
	v.query.Page = 1
}

func (v *View[T]) ClearMatch() {
	v.SetMatch("", nil)
}

// Clear drops both the search text and the match filter.
func (v *View[T]) Clear() {
	v.query.Search = ""
	v.ClearMatch()
}

// Toggle flips the direction when field is already the sort column; a new
// field starts ascending. Unknown fields are ignored and reported false.
func (v *View[T]) Toggle(field string) bool {
	if field == "" || !v.schema.CanSort(field) {
		return false
	}
	if v.query.SortField == field {
		v.query.Dir = v.query.Dir.Flip()
		return true
	}
	v.query.SortField = field
	v.query.Dir = Asc
	return true
}

// SetPageSize changes rows per page and always returns to page 1.
func (v *View[T]) SetPageSize(n int) {
	v.query.Size = v.schema.pageSize(n)
	v.query.Page = 1
}

func (v *View[T]) SetPage(p int) { v.query.Page = p }

func (v *View[T]) Next() { v.query.Page++ }

func (v *View[T]) Prev() {
	if v.query.Page > 1 {
		v.query.Page--
	}
}

// Apply runs the pipeline over items and remembers the clamped page so a
// later Next or Prev starts from a valid position.
func (v *View[T]) Apply(items []T) Page[T] {
	p, err := v.schema.Run(items, v.query, v.match)
	if err != nil {
		// Only reachable when the schema's default sort is unknown.
		s := v.schema
		s.DefaultSort = ""
		q := v.query
		q.SortField = ""
		p, _ = s.Run(items, q, v.match)
	}
	v.query.Page = p.Page
	return p
}
