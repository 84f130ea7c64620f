// Package pagination slices ordered queues into fixed-size pages. Paging
// is index-based: queues are small and re-querying the full filtered set
// per page is acceptable, so there are no cursors or tokens to invalidate.
package pagination

// Page describes one rendered page of a queue.
type Page[T any] struct {
	Items   []T
	Index   int // clamped page index actually rendered
	Total   int // total number of pages (at least 1)
	HasPrev bool
	HasNext bool
}

// Slice returns the requested page. The index is clamped to the valid
// range, so navigating past either end re-renders the boundary page
// instead of erroring; repeated "next" presses at the end are harmless.
func Slice[T any](items []T, index, size int) Page[T] {
	if size <= 0 {
		size = 1
	}
	total := (len(items) + size - 1) / size
	if total < 1 {
		total = 1
	}
	if index < 0 {
		index = 0
	}
	if index > total-1 {
		index = total - 1
	}
	start := index * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:   items[start:end],
		Index:   index,
		Total:   total,
		HasPrev: index > 0,
		HasNext: index < total-1,
	}
}
