// ABOUTME: Client-side pagination and the windowed page control
// ABOUTME: Pages are 1-based; the window shows first, last and current±1

package search

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 10

// PageCount returns how many pages n items fill.
func PageCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// Paginate returns the items of a 1-based page. Out-of-range pages are empty.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageItem is one slot of the page control: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// Window lays out the page control: the first page, an ellipsis when pages
// are skipped, the current page with one neighbour on each side, another
// ellipsis and the last page.
func Window(current, total int) []PageItem {
	if total <= 0 {
		return nil
	}
	current = max(1, min(current, total))

	var items []PageItem
	last := 0
	emit := func(p int) {
		if p <= last || p < 1 || p > total {
			return
		}
		if last != 0 && p > last+1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: p, Current: p == current})
		last = p
	}

	emit(1)
	for p := current - 1; p <= current+1; p++ {
		emit(p)
	}
	emit(total)
	return items
}
