// ABOUTME: Tests for criteria, pagination, the page window and view state
// ABOUTME: Empty criteria must never reach the search function

package search

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria_Empty(t *testing.T) {
	assert.True(t, PersonCriteria{}.Empty())
	assert.True(t, PersonCriteria{Names: "   ", Address: "\t"}.Empty())
	assert.False(t, PersonCriteria{Lastnames: "Pérez"}.Empty())

	assert.True(t, RecordCriteria{}.Empty())
	assert.False(t, RecordCriteria{DateFrom: "2024-01-01"}.Empty())
}

func TestCriteria_Values(t *testing.T) {
	v := PersonCriteria{Names: " Ana ", Identification: "0102"}.Values()
	assert.Equal(t, url.Values{"names": {"Ana"}, "identification": {"0102"}}, v)

	v = RecordCriteria{TypeRecord: "ROBO", PersonName: "Ana", DateTo: "2024-12-31"}.Values()
	assert.Equal(t, url.Values{
		"type_record": {"ROBO"},
		"person_name": {"Ana"},
		"date_to":     {"2024-12-31"},
	}, v)
}

func TestView_EmptyCriteriaNeverSearches(t *testing.T) {
	for _, c := range []Criteria{PersonCriteria{}, PersonCriteria{Names: "  "}, RecordCriteria{}} {
		v := NewView[int](10)
		require.NoError(t, v.Run(context.Background(), PersonCriteria{Names: "seed"}, func(context.Context, url.Values) ([]int, error) {
			return []int{1, 2, 3}, nil
		}))

		called := false
		err := v.Run(context.Background(), c, func(context.Context, url.Values) ([]int, error) {
			called = true
			return nil, nil
		})

		assert.ErrorIs(t, err, ErrEmptyCriteria)
		assert.False(t, called)
		assert.Equal(t, []int{1, 2, 3}, v.Results(), "results are untouched")
	}
}

func TestView_States(t *testing.T) {
	v := NewView[string](10)
	ctx := context.Background()
	assert.Equal(t, StateInitial, v.State())

	require.NoError(t, v.Run(ctx, PersonCriteria{Names: "x"}, func(context.Context, url.Values) ([]string, error) {
		return nil, nil
	}))
	assert.Equal(t, StateEmpty, v.State())
	assert.NotNil(t, v.Results())

	require.NoError(t, v.Run(ctx, PersonCriteria{Names: "x"}, func(context.Context, url.Values) ([]string, error) {
		return []string{"a"}, nil
	}))
	assert.Equal(t, StateResults, v.State())

	v.Clear()
	assert.Equal(t, StateInitial, v.State())
	assert.False(t, v.Performed())
	assert.Empty(t, v.Results())
}

func TestView_FailedSearchKeepsResults(t *testing.T) {
	v := NewView[int](10)
	ctx := context.Background()
	require.NoError(t, v.Run(ctx, RecordCriteria{Title: "a"}, func(context.Context, url.Values) ([]int, error) {
		return []int{7}, nil
	}))

	boom := errors.New("boom")
	err := v.Run(ctx, RecordCriteria{Title: "b"}, func(context.Context, url.Values) ([]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{7}, v.Results())
}

func TestView_RunResetsPage(t *testing.T) {
	v := NewView[int](10)
	ctx := context.Background()
	search := func(context.Context, url.Values) ([]int, error) { return seq(25), nil }

	require.NoError(t, v.Run(ctx, PersonCriteria{Names: "x"}, search))
	v.SetPage(3)
	assert.Equal(t, 3, v.Page())
	assert.Equal(t, []int{20, 21, 22, 23, 24}, v.PageItems())

	v.SetPage(99)
	assert.Equal(t, 3, v.Page(), "clamped to the last page")

	require.NoError(t, v.Run(ctx, PersonCriteria{Names: "y"}, search))
	assert.Equal(t, 1, v.Page())
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_CoversEveryItemOnce(t *testing.T) {
	for _, n := range []int{0, 1, 10, 11, 25} {
		items := seq(n)
		seen := map[int]int{}
		pages := PageCount(n, 10)
		for p := 1; p <= pages; p++ {
			page := Paginate(items, p, 10)
			assert.LessOrEqual(t, len(page), 10)
			assert.NotEmpty(t, page, "n=%d page=%d", n, p)
			for _, it := range page {
				seen[it]++
			}
		}
		assert.Len(t, seen, n, "n=%d", n)
		for it, count := range seen {
			assert.Equal(t, 1, count, "n=%d item %d", n, it)
		}
		assert.Empty(t, Paginate(items, pages+1, 10))
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ n, want int }{{0, 0}, {1, 1}, {10, 1}, {11, 2}, {25, 3}}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.n, 10), "n=%d", tt.n)
	}
	assert.Equal(t, 3, PageCount(25, 0), "non-positive size uses the default")
}

func render(items []PageItem) []any {
	out := make([]any, len(items))
	for i, it := range items {
		switch {
		case it.Ellipsis:
			out[i] = "…"
		case it.Current:
			out[i] = []int{it.Page}
		default:
			out[i] = it.Page
		}
	}
	return out
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []any
	}{
		{"no pages", 1, 0, []any{}},
		{"single page", 1, 1, []any{[]int{1}}},
		{"two pages", 2, 2, []any{1, []int{2}}},
		{"first of many", 1, 10, []any{[]int{1}, 2, "…", 10}},
		{"middle", 5, 10, []any{1, "…", 4, []int{5}, 6, "…", 10}},
		{"next to first", 3, 10, []any{1, 2, []int{3}, 4, "…", 10}},
		{"last", 10, 10, []any{1, "…", 9, []int{10}}},
		{"clamped", 42, 3, []any{1, 2, []int{3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(Window(tt.current, tt.total)))
		})
	}
}
