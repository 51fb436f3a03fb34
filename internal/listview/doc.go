// Package listview implements the list pipeline shared by every dashboard
// table: search, filter, sort and paginate over an in-memory slice.
//
// The stages are plain functions (Filter, Where, Sort, Paginate) so they can be
// composed directly. Schema binds them to one record type (searchable text,
// sortable fields, tie-break, page sizes) and View keeps the interactive state
// of a table between inputs.
//
// Ordering is always stable: records that compare equal keep the order they
// arrived in, and an optional tie-break comparator is applied ascending
// whatever the primary direction.
package listview
