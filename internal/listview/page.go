package listview

import "fmt"

const DefaultPageSize = 10

// Page is one slice of a derived view. From and To are the 1-based inclusive
// positions of the first and last row shown, both 0 when the view is empty.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	From       int
	To         int
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Summary renders the range line shown under a table.
func (p Page[T]) Summary() string {
	if p.TotalItems == 0 {
		return "no results"
	}
	return fmt.Sprintf("showing %d–%d of %d", p.From, p.To, p.TotalItems)
}

// TotalPages is ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage forces page into [1, max(1, TotalPages(n, size))].
func ClampPage(page, n, size int) int {
	last := TotalPages(n, size)
	if last < 1 {
		last = 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate slices view for the requested page, clamping out-of-range page
// numbers instead of failing.
func Paginate[T any](view []T, size, page int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	n := len(view)
	page = ClampPage(page, n, size)
	p := Page[T]{
		Number:     page,
		Size:       size,
		TotalItems: n,
		TotalPages: TotalPages(n, size),
		Items:      []T{},
	}
	start := (page - 1) * size
	end := min(start+size, n)
	if start < end {
		p.Items = view[start:end:end]
		p.From = start + 1
		p.To = end
	}
	return p
}
