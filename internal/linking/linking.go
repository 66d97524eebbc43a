// ABOUTME: Link/unlink widget logic shared by record and person linking
// ABOUTME: Available-set subtraction, ordered selection, sequential batch link, confirmed unlink

// Package linking implements the selection and batch semantics behind the
// person-record and person-person link widgets. A batch is a sequential loop
// of independent calls; a failed item never undoes the ones before it.
package linking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/antecedentes/internal/api"
)

// Available returns the candidates whose id is not in linked, keeping order.
func Available[T any](candidates []T, linked []int64, id func(T) int64) []T {
	exclude := make(map[int64]struct{}, len(linked))
	for _, l := range linked {
		exclude[l] = struct{}{}
	}
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := exclude[id(c)]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Partition splits ids into those not in linked and those already in it,
// keeping order.
func Partition(ids, linked []int64) (available, already []int64) {
	exclude := make(map[int64]struct{}, len(linked))
	for _, l := range linked {
		exclude[l] = struct{}{}
	}
	available = make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := exclude[id]; ok {
			already = append(already, id)
			continue
		}
		available = append(available, id)
	}
	return available, already
}

// Selection is an ordered set of selected ids.
type Selection struct {
	ids []int64
}

// Has reports whether id is selected.
func (s *Selection) Has(id int64) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Set selects or deselects id.
func (s *Selection) Set(id int64, selected bool) {
	if selected {
		if !s.Has(id) {
			s.ids = append(s.ids, id)
		}
		return
	}
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id int64) bool {
	on := !s.Has(id)
	s.Set(id, on)
	return on
}

// Clear deselects everything.
func (s *Selection) Clear() { s.ids = nil }

// Len is the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Widget combines the linked set of a subject, the "show only available"
// toggle and the current selection.
type Widget[T any] struct {
	ShowOnlyAvailable bool
	Selection         Selection

	id     func(T) int64
	linked []int64
}

// NewWidget creates a widget with the toggle on.
func NewWidget[T any](id func(T) int64, linked []int64) *Widget[T] {
	w := &Widget[T]{ShowOnlyAvailable: true, id: id}
	w.SetLinked(linked)
	return w
}

// SetLinked replaces the ids already linked to the subject.
func (w *Widget[T]) SetLinked(linked []int64) {
	w.linked = append([]int64(nil), linked...)
}

// Linked returns the ids already linked to the subject.
func (w *Widget[T]) Linked() []int64 {
	return append([]int64(nil), w.linked...)
}

// IsLinked reports whether id is already linked to the subject.
func (w *Widget[T]) IsLinked(id int64) bool {
	for _, l := range w.linked {
		if l == id {
			return true
		}
	}
	return false
}

// Visible returns the candidates to show given the toggle.
func (w *Widget[T]) Visible(candidates []T) []T {
	if !w.ShowOnlyAvailable {
		return candidates
	}
	return Available(candidates, w.linked, w.id)
}

// ID returns the id of a candidate.
func (w *Widget[T]) ID(c T) int64 { return w.id(c) }

// Report is the outcome of a batch link.
type Report struct {
	Linked       []int64
	SuccessCount int
	ErrorCount   int
	Warnings     []string
}

// OK reports whether every item linked.
func (r Report) OK() bool { return r.ErrorCount == 0 }

// Summary is a one-line description of the batch.
func (r Report) Summary() string {
	return fmt.Sprintf("%d linked, %d failed", r.SuccessCount, r.ErrorCount)
}

// LinkFunc links one item.
type LinkFunc func(ctx context.Context, id int64) error

// LinkAll calls fn for each id in order. Each call is independent: failures
// are counted and described in Warnings, and the loop continues. Once ctx is
// done the remaining ids are not attempted; they count as failed under a
// single warning.
func LinkAll(ctx context.Context, ids []int64, fn LinkFunc) Report {
	r := Report{Linked: []int64{}, Warnings: []string{}}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			rest := ids[i:]
			r.ErrorCount += len(rest)
			r.Warnings = append(r.Warnings, fmt.Sprintf("not attempted (%v): %s", err, joinIDs(rest)))
			break
		}
		if err := fn(ctx, id); err != nil {
			r.ErrorCount++
			r.Warnings = append(r.Warnings, fmt.Sprintf("%d: %s", id, api.Message(err)))
			continue
		}
		r.SuccessCount++
		r.Linked = append(r.Linked, id)
	}
	return r
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

// Unlink asks confirm, then calls call and refetches the list from the
// server. When confirm declines nothing happens and ok is false.
func Unlink[T any](ctx context.Context, confirm func() bool, call func(context.Context) error, refetch func(context.Context) ([]T, error)) (items []T, ok bool, err error) {
	if !confirm() {
		return nil, false, nil
	}
	if err := call(ctx); err != nil {
		return nil, false, err
	}
	items, err = refetch(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("refreshing after unlink: %w", err)
	}
	return items, true, nil
}
