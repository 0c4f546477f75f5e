package listing

import (
	"fmt"
	"slices"

	"github.com/webpos/posdash/internal/pos"
)

// DefaultPageSize is the initial rows-per-page.
const DefaultPageSize = 10

// PageSizes are the selectable rows-per-page values.
var PageSizes = []int{10, 25, 50, 100}

// Pager is a 1-based page cursor.
type Pager struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPager starts on page 1 with the default size.
func NewPager() Pager {
	return Pager{Page: 1, Size: DefaultPageSize}
}

func (p Pager) size() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

// SetSize switches to one of PageSizes and returns to page 1.
func (p Pager) SetSize(size int) (Pager, error) {
	if !slices.Contains(PageSizes, size) {
		return p, fmt.Errorf("%w: page size must be one of %v", pos.ErrValidation, PageSizes)
	}
	return Pager{Page: 1, Size: size}, nil
}

// Go moves to page, clamped to [1, TotalPages(total)].
func (p Pager) Go(page, total int) Pager {
	return Pager{Page: clamp(page, TotalPages(total, p.size())), Size: p.size()}
}

// Next advances one page, stopping at the last page.
func (p Pager) Next(total int) Pager {
	return p.Go(p.Page+1, total)
}

// Prev goes back one page, stopping at page 1.
func (p Pager) Prev(total int) Pager {
	return p.Go(p.Page-1, total)
}

// Reset returns to page 1, keeping the size.
func (p Pager) Reset() Pager {
	return Pager{Page: 1, Size: p.size()}
}

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Window returns the [start, end) bounds of page within total items. Pages
// outside the valid range yield an empty window.
func Window(total, page, size int) (start, end int) {
	if size <= 0 || page < 1 || total <= 0 {
		return 0, 0
	}
	start = (page - 1) * size
	if start >= total {
		return total, total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// Slice returns a copy of the page window of items.
func Slice[T any](items []T, page, size int) []T {
	start, end := Window(len(items), page, size)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Page is one visible page of rows plus its navigation metadata.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate slices items at the pager's page, clamping it into range first.
func Paginate[T any](items []T, p Pager) Page[T] {
	total := len(items)
	clamped := p.Go(p.Page, total)
	pages := TotalPages(total, clamped.Size)
	return Page[T]{
		Items:      Slice(items, clamped.Page, clamped.Size),
		Page:       clamped.Page,
		Size:       clamped.Size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    clamped.Page > 1,
		HasNext:    clamped.Page < pages,
	}
}

func clamp(page, last int) int {
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}
