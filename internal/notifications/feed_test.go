package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/mineops/internal/listview"
)

func fixedFeed(t *testing.T, msgs ...string) *Feed {
	t.Helper()
	f := NewFeed()
	base := time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC)
	i := 0
	f.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}
	for _, m := range msgs {
		f.Push(m)
	}
	return f
}

func TestFeed_PushIsNewestFirst(t *testing.T) {
	f := fixedFeed(t, "first", "second")
	list := f.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
	assert.False(t, list[0].Read)
	assert.NotEqual(t, list[0].ID, list[1].ID)
	assert.Equal(t, 2, f.Unread())
}

func TestFeed_MarkReadUnreadDelete(t *testing.T) {
	f := fixedFeed(t, "a", "b")
	id := f.List()[1].ID

	require.NoError(t, f.MarkRead(id))
	assert.Equal(t, 1, f.Unread())
	require.NoError(t, f.MarkUnread(id))
	assert.Equal(t, 2, f.Unread())

	require.NoError(t, f.Delete(id))
	assert.Len(t, f.List(), 1)
	assert.ErrorIs(t, f.Delete(id), ErrNotFound)
	assert.ErrorIs(t, f.MarkRead("nope"), ErrNotFound)
}

func TestFeed_Bulk(t *testing.T) {
	f := fixedFeed(t, "a", "b", "c")

	require.NoError(t, f.Bulk(ActionRead))
	assert.Zero(t, f.Unread())
	require.NoError(t, f.Bulk(ActionUnread))
	assert.Equal(t, 3, f.Unread())
	assert.ErrorIs(t, f.Bulk("archive"), ErrUnknownAction)

	require.NoError(t, f.Bulk(ActionDelete))
	assert.Empty(t, f.List())
}

func TestMatch(t *testing.T) {
	f := fixedFeed(t, "a", "b", "c")
	require.NoError(t, f.MarkRead(f.List()[0].ID))

	read, err := Match(FilterRead)
	require.NoError(t, err)
	assert.Len(t, listview.Where(f.List(), read), 1)

	unread, err := Match(FilterUnread)
	require.NoError(t, err)
	assert.Len(t, listview.Where(f.List(), unread), 2)

	all, err := Match(FilterAll)
	require.NoError(t, err)
	assert.Len(t, listview.Where(f.List(), all), 3)

	_, err = Match("starred")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestSchema_NewestFirst(t *testing.T) {
	f := fixedFeed(t, "old", "new")
	p, err := Schema().Run(f.List(), listview.Query{Page: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", p.Items[0].Message)
}
