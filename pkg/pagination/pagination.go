package pagination

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is the fixed page size used by the listing surfaces.
const DefaultPerPage = 10

// maxPerPage bounds what a crafted URL can request.
const maxPerPage = 100

// Params holds the 1-based page state carried through listing URLs.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page with the default page size.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// FromValues extracts page state from URL query values. Missing or
// malformed values fall back to the defaults, so any shared link yields
// a usable page state.
func FromValues(values url.Values) Params {
	p := DefaultParams()

	if page := values.Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := values.Get("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPerPage {
			p.PerPage = v
		}
	}

	return p
}

// Encode writes the page state into the given query values. Page 1 with
// the default size encodes to nothing, keeping shared URLs minimal.
func (p Params) Encode(values url.Values) {
	if p.Page > 1 {
		values.Set("page", strconv.Itoa(p.Page))
	} else {
		values.Del("page")
	}
	if p.PerPage > 0 && p.PerPage != DefaultPerPage {
		values.Set("perPage", strconv.Itoa(p.PerPage))
	} else {
		values.Del("perPage")
	}
}

// Result wraps one page of a paginated response.
type Result[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewResult creates a paginated result, deriving the total page count.
func NewResult[T any](items []T, totalCount int, params Params) Result[T] {
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := totalCount / perPage
	if totalCount%perPage > 0 {
		totalPages++
	}

	return Result[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a page after the current one exists.
func (r Result[T]) HasNext() bool {
	return r.Page < r.TotalPages
}

// HasPrev reports whether a page before the current one exists.
func (r Result[T]) HasPrev() bool {
	return r.Page > 1
}

// Empty reports whether the page holds no items. An empty page is a
// valid outcome, not an error.
func (r Result[T]) Empty() bool {
	return len(r.Items) == 0
}
