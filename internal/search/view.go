// ABOUTME: Search view state: criteria gate, stored results and current page
// ABOUTME: Distinguishes the not-yet-searched state from an empty result

package search

import (
	"context"
	"net/url"
)

// State is what the result area shows.
type State int

const (
	// StateInitial is before any search, or after Clear.
	StateInitial State = iota
	// StateEmpty is a performed search with no matches.
	StateEmpty
	// StateResults is a performed search with matches.
	StateResults
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateEmpty:
		return "empty"
	case StateResults:
		return "results"
	}
	return "unknown"
}

// Func runs a search with the given query.
type Func[T any] func(ctx context.Context, query url.Values) ([]T, error)

// View holds the results of the last search and paginates them.
type View[T any] struct {
	pageSize  int
	results   []T
	performed bool
	page      int
}

// NewView creates a view. A non-positive size uses DefaultPageSize.
func NewView[T any](pageSize int) *View[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View[T]{pageSize: pageSize, results: []T{}, page: 1}
}

// Run searches with c. Empty criteria return ErrEmptyCriteria without calling
// fn and leave the current results untouched. A failed search also keeps them.
func (v *View[T]) Run(ctx context.Context, c Criteria, fn Func[T]) error {
	if c.Empty() {
		return ErrEmptyCriteria
	}
	results, err := fn(ctx, c.Values())
	if err != nil {
		return err
	}
	if results == nil {
		results = []T{}
	}
	v.results = results
	v.performed = true
	v.page = 1
	return nil
}

// Clear forgets the results and the performed flag.
func (v *View[T]) Clear() {
	v.results = []T{}
	v.performed = false
	v.page = 1
}

// State reports what the result area shows.
func (v *View[T]) State() State {
	switch {
	case !v.performed:
		return StateInitial
	case len(v.results) == 0:
		return StateEmpty
	}
	return StateResults
}

// Performed reports whether a search has run since the last Clear.
func (v *View[T]) Performed() bool { return v.performed }

// Results returns every stored result.
func (v *View[T]) Results() []T { return v.results }

// Total is the number of stored results.
func (v *View[T]) Total() int { return len(v.results) }

// Page is the current 1-based page.
func (v *View[T]) Page() int { return v.page }

// PageSize is the number of rows per page.
func (v *View[T]) PageSize() int { return v.pageSize }

// PageCount is the number of pages of the stored results.
func (v *View[T]) PageCount() int { return PageCount(len(v.results), v.pageSize) }

// SetPage moves to page p, clamped to the available pages.
func (v *View[T]) SetPage(p int) {
	v.page = max(1, min(p, v.PageCount()))
}

// PageItems returns the rows of the current page.
func (v *View[T]) PageItems() []T { return Paginate(v.results, v.page, v.pageSize) }

// Window returns the page control for the current page.
func (v *View[T]) Window() []PageItem { return Window(v.page, v.PageCount()) }
