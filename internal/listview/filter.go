package listview

import "strings"

// Filter returns the records for which at least one of the text accessors
// contains query as a case-insensitive substring. An empty query returns a
// copy of all records. The input slice is never modified.
func Filter[T any](items []T, query string, text ...func(T) string) []T {
	if query == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, get := range text {
			if strings.Contains(strings.ToLower(get(it)), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Where returns the records accepted by match. A nil match keeps everything.
func Where[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match == nil || match(it) {
			out = append(out, it)
		}
	}
	return out
}
