package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_TwentyThreeItems(t *testing.T) {
	items := seq(23)

	first := Paginate(items, 10, 1)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, first.Window)
	assert.Len(t, first.Items, 10)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last := Paginate(items, 10, 3)
	assert.Equal(t, []int{1, 2, 3}, last.Window)
	assert.Equal(t, []int{20, 21, 22}, last.Items)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
}

func TestPaginate_PagesCoverAllItems(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 57, 100} {
		for _, size := range []int{1, 3, 10} {
			items := seq(n)
			first := Paginate(items, size, 1)

			sum := 0
			var collected []int
			for p := 1; p <= first.TotalPages; p++ {
				page := Paginate(items, size, p)
				sum += len(page.Items)
				collected = append(collected, page.Items...)
				assert.LessOrEqual(t, len(page.Window), MaxWindow)
				assert.Contains(t, page.Window, p)
			}
			assert.Equal(t, n, sum, "n=%d size=%d", n, size)
			if n > 0 {
				assert.Equal(t, items, collected)
			}
		}
	}
}

func TestPaginate_Empty(t *testing.T) {
	page := Paginate([]string{}, 10, 4)

	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 1, page.Current)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.Window)
	assert.False(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	items := seq(23)

	assert.Equal(t, 3, Paginate(items, 10, 99).Current)
	assert.Equal(t, 1, Paginate(items, 10, -2).Current)
}

func TestPaginate_DefaultPageSize(t *testing.T) {
	page := Paginate(seq(15), 0, 1)
	assert.Len(t, page.Items, DefaultPageSize)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 20, []int{1, 2, 3, 4, 5, 6}},
		{3, 20, []int{1, 2, 3, 4, 5, 6}},
		{6, 20, []int{1, 2, 3, 4, 5, 6}},
		{7, 20, []int{2, 3, 4, 5, 6, 7}},
		{10, 20, []int{5, 6, 7, 8, 9, 10}},
		{18, 20, []int{13, 14, 15, 16, 17, 18}},
		{20, 20, []int{15, 16, 17, 18, 19, 20}},
		{4, 6, []int{1, 2, 3, 4, 5, 6}},
		{1, 0, []int{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Window(tt.current, tt.total), "current=%d total=%d", tt.current, tt.total)
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC)
	c := Cursor{ID: "6f1c", At: at}

	parsed, err := ParseCursor(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, "6f1c", parsed.ID)
	assert.True(t, parsed.At.Equal(at))
}

func TestParseCursor_Invalid(t *testing.T) {
	got, err := ParseCursor("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"%%%", "bm8tc2VwYXJhdG9y", Cursor{ID: "x", At: time.Now()}.Encode()[:4]} {
		_, err := ParseCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestNewListing(t *testing.T) {
	key := func(i int) Cursor { return Cursor{ID: "id", At: time.Unix(int64(i), 0)} }

	full := NewListing(seq(4), 3, key)
	assert.Equal(t, []int{0, 1, 2}, full.Items)
	assert.True(t, full.HasMore)
	assert.NotEmpty(t, full.Next)

	short := NewListing(seq(2), 3, key)
	assert.False(t, short.HasMore)
	assert.Empty(t, short.Next)

	empty := NewListing[int](nil, 3, key)
	assert.NotNil(t, empty.Items)
}
