package resolver

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// slicePages serves pages of ints and records the cursors it was asked for
type slicePages struct {
	pages   [][]int
	cursors []string
	failAt  int
}

func (s *slicePages) fetch(_ context.Context, cursor string) (Page[int], error) {
	s.cursors = append(s.cursors, cursor)
	idx := 0
	if cursor != "" {
		idx, _ = strconv.Atoi(cursor)
	}
	if s.failAt > 0 && idx == s.failAt {
		return Page[int]{}, errors.New("boom")
	}
	page := Page[int]{Items: s.pages[idx]}
	if idx+1 < len(s.pages) {
		page.Next = strconv.Itoa(idx + 1)
	}
	return page, nil
}

func TestPager(t *testing.T) {
	ctx := context.Background()

	t.Run("yields every page in order and threads the cursor", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1, 2}, {3, 4}, {5}}}
		p := NewPager(src.fetch, nil)

		var batches [][]int
		for p.Next(ctx) {
			batches = append(batches, p.Batch())
		}
		require.NoError(t, p.Err())
		require.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, batches)
		require.Equal(t, []int{1, 2, 3, 4, 5}, p.Accumulated())
		require.Equal(t, []string{"", "1", "2"}, src.cursors)
		require.Equal(t, 3, p.Pages())
		require.False(t, p.Stopped())
	})

	t.Run("is not restartable", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1}}}
		p := NewPager(src.fetch, nil)
		require.True(t, p.Next(ctx))
		require.False(t, p.Next(ctx))
		require.False(t, p.Next(ctx))
		require.Len(t, src.cursors, 1)
	})

	t.Run("stop predicate ends after delivering the batch", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1, 2}, {3, 4}, {5, 6}}}
		p := NewPager(src.fetch, func(acc, batch []int) bool {
			return len(acc) >= 4
		})

		var seen []int
		for p.Next(ctx) {
			seen = append(seen, p.Batch()...)
		}
		require.Equal(t, []int{1, 2, 3, 4}, seen)
		require.True(t, p.Stopped())
		require.Equal(t, 2, p.Pages())
	})

	t.Run("errors propagate without retry", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1}, {2}, {3}}, failAt: 1}
		p := NewPager(src.fetch, nil)

		require.True(t, p.Next(ctx))
		require.False(t, p.Next(ctx))
		require.EqualError(t, p.Err(), "boom")
		require.Nil(t, p.Batch())
		require.Equal(t, []string{"", "1"}, src.cursors)
	})

	t.Run("page limit", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1}, {2}, {3}}}
		p := NewPager(src.fetch, nil).LimitPages(2)
		for p.Next(ctx) {
		}
		require.Equal(t, []int{1, 2}, p.Accumulated())
		require.True(t, p.Limited())
	})

	t.Run("limit is not reported when the list ends on time", func(t *testing.T) {
		src := &slicePages{pages: [][]int{{1}, {2}}}
		p := NewPager(src.fetch, nil).LimitPages(2)
		for p.Next(ctx) {
		}
		require.False(t, p.Limited())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		src := &slicePages{pages: [][]int{{1}}}
		p := NewPager(src.fetch, nil)
		require.False(t, p.Next(cctx))
		require.ErrorIs(t, p.Err(), context.Canceled)
		require.Empty(t, src.cursors)
	})

	t.Run("done flag ends even with a cursor", func(t *testing.T) {
		p := NewPager(func(_ context.Context, _ string) (Page[int], error) {
			return Page[int]{Items: []int{1}, Next: "ignored", Done: true}, nil
		}, nil)
		require.True(t, p.Next(ctx))
		require.False(t, p.Next(ctx))
	})
}
