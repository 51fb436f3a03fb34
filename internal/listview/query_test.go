package listview

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema[item] {
	return Schema[item]{
		Search: []func(item) string{itemName},
		Sortable: map[string]func(a, b item) int{
			"name":      By(itemName),
			"available": By(func(i item) int { return i.available }),
		},
		PageSize:    5,
		MaxPageSize: 100,
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		field   string
		dir     Direction
		wantErr bool
	}{
		{"", "", "", false},
		{"name", "name", Asc, false},
		{"available:desc", "available", Desc, false},
		{" name : ASC", "name", Asc, false},
		{":desc", "", "", true},
		{"name:sideways", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, d, err := ParseSort(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, f)
			assert.Equal(t, tt.dir, d)
		})
	}
}

func TestParseQuery_Valid(t *testing.T) {
	v := url.Values{"q": {"co"}, "sort": {"available:desc"}, "page": {"2"}, "size": {"10"}}
	q, err := ParseQuery(v, testSchema())
	require.NoError(t, err)
	assert.Equal(t, Query{Search: "co", SortField: "available", Dir: Desc, Page: 2, Size: 10}, q)
}

func TestParseQuery_Defaults(t *testing.T) {
	q, err := ParseQuery(url.Values{}, testSchema())
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Zero(t, q.Size)
	assert.Empty(t, q.SortField)
}

func TestParseQuery_CollectsAllErrors(t *testing.T) {
	v := url.Values{"sort": {"colour"}, "page": {"0"}, "size": {"1000"}}
	_, err := ParseQuery(v, testSchema())
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe["sort"], "unknown field")
	assert.Contains(t, fe["page"], ">= 1")
	assert.Contains(t, fe["size"], "<= 100")
	assert.Contains(t, err.Error(), "page: ")
}

func TestQueryValues_RoundTrip(t *testing.T) {
	in := Query{Search: "water", SortField: "name", Dir: Desc, Page: 3, Size: 20}
	out, err := ParseQuery(in.Values(), testSchema())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
