package paging

import (
	"net/url"
	"strconv"
	"strings"
)

// Sizes are the page sizes offered by list screens.
var Sizes = []int{5, 10, 25, 100}

// Page is one display window over a fully fetched collection. Page is
// 1-based.
type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int
	Pages int
	From  int
	To    int
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.Pages }
func (p Page[T]) Prev() int     { return p.Page - 1 }
func (p Page[T]) Next() int     { return p.Page + 1 }

// Window slices items for the given page. Out of range pages clamp to the
// nearest valid page.
func Window[T any](items []T, page, size int) Page[T] {
	out := Bounds[T](len(items), page, size)
	if out.Total > 0 {
		out.Items = items[out.From-1 : out.To]
	} else {
		out.Items = items[:0:0]
	}
	return out
}

// Bounds computes the page metadata for a collection of total items held
// elsewhere, such as a LIMIT/OFFSET query. Items is left empty.
func Bounds[T any](total, page, size int) Page[T] {
	if size <= 0 {
		size = Sizes[0]
	}
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	out := Page[T]{Page: page, Size: size, Total: total, Pages: pages}
	if total > 0 {
		out.From = (page-1)*size + 1
		out.To = min(page*size, total)
	}
	return out
}

// Offset is the zero-based index of the page's first item.
func (p Page[T]) Offset() int {
	return (p.Page - 1) * p.Size
}

// NormalizeSize returns size when it is an offered size, otherwise def.
func NormalizeSize(size, def int) int {
	for _, s := range Sizes {
		if s == size {
			return size
		}
	}
	return def
}

// Parse reads page and size from the query string.
func Parse(q url.Values, defaultSize int) (page, size int) {
	page, err := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(strings.TrimSpace(q.Get("size")))
	if err != nil {
		size = defaultSize
	}
	return page, NormalizeSize(size, defaultSize)
}
