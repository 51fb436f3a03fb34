package listview

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Page is one slice of a list plus the metadata a table footer needs.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// PageCount is ceil(n/size) with a minimum of 1, so an empty list still has
// one (empty) page.
func PageCount(n, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, PageCount(n, size)].
func ClampPage(page, n, size int) int {
	last := PageCount(n, size)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate returns items[(page-1)*size : page*size] after clamping page to
// the valid range.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	n := len(items)
	total := PageCount(n, size)
	page = ClampPage(page, n, size)

	start := (page - 1) * size
	end := min(start+size, n)

	out := make([]T, 0, end-start)
	out = append(out, items[start:end]...)

	return Page[T]{
		Items:       out,
		Page:        page,
		PageSize:    size,
		TotalPages:  total,
		TotalItems:  n,
		HasPrevious: page > 1,
		HasNext:     page < total,
	}
}
