package search

import (
	"context"
	"log/slog"

	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/pagination"
)

// SearchFunc runs one paginated search for a listing surface.
type SearchFunc func(ctx context.Context, criteria Criteria, params pagination.Params) (pagination.Result[domain.Listing], error)

// Controller drives one listing page: it seeds itself from the URL,
// runs searches, paginates and keeps the URL in sync so the page is
// shareable at any moment. Results and page index only change after a
// fetch completes; a failed fetch leaves the previous results visible.
//
// A Controller is bound to the page's interaction loop and is not safe
// for concurrent use.
type Controller struct {
	nav       Navigator
	decode    Decoder
	fetch     SearchFunc
	logger    *slog.Logger
	onResults func()

	criteria   Criteria
	params     pagination.Params
	totalPages int
	items      []domain.Listing
	searched   bool
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithResultsSignal registers a callback fired after every successful
// fetch, once the new results are committed. The page uses it to
// scroll the result list into view.
func WithResultsSignal(fn func()) ControllerOption {
	return func(c *Controller) { c.onResults = fn }
}

// NewController builds a controller for one listing surface.
func NewController(nav Navigator, decode Decoder, fetch SearchFunc, log *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		nav:    nav,
		decode: decode,
		fetch:  fetch,
		logger: log,
		params: pagination.Params{Page: 1, PerPage: pagination.DefaultPerPage},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed restores search state from the current URL. When the decoded
// criteria carry the minimum required filter the search runs
// immediately, so opening a shared link lands on the same results.
// Once a search has run in this page instance, Seed is a no-op:
// repeated mount cycles must not refetch or overwrite committed state.
func (c *Controller) Seed(ctx context.Context) error {
	if c.searched {
		return nil
	}

	values := c.nav.Query()
	criteria := c.decode(values)
	params := pagination.FromValues(values)

	c.criteria = criteria
	c.params = params
	if !criteria.Ready() {
		return nil
	}
	if err := criteria.Validate(); err != nil {
		return err
	}
	return c.run(ctx, criteria, params)
}

// Submit runs a fresh search with the given criteria, starting from
// the first page, and rewrites the URL to match.
func (c *Controller) Submit(ctx context.Context, criteria Criteria) error {
	if !criteria.Ready() {
		return apperrors.InvalidInput("a destination is required to search")
	}
	if err := criteria.Validate(); err != nil {
		return err
	}

	params := pagination.Params{Page: 1, PerPage: c.params.PerPage}
	c.writeURL(criteria, params)
	return c.run(ctx, criteria, params)
}

// QuickSelect behaves like Submit for criteria chosen from a shortcut
// (popular destination tiles, recent searches).
func (c *Controller) QuickSelect(ctx context.Context, criteria Criteria) error {
	return c.Submit(ctx, criteria)
}

// SetPage fetches the given 1-based page of the current search and
// rewrites the URL to match. It fails when no search has run yet.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	if !c.searched {
		return apperrors.InvalidInput("no search to paginate")
	}
	if page < 1 {
		page = 1
	}

	params := pagination.Params{Page: page, PerPage: c.params.PerPage}
	c.writeURL(c.criteria, params)
	return c.run(ctx, c.criteria, params)
}

func (c *Controller) run(ctx context.Context, criteria Criteria, params pagination.Params) error {
	result, err := c.fetch(ctx, criteria, params)
	if err != nil {
		c.logger.WarnContext(ctx, "search failed",
			slog.String("vertical", string(criteria.Vertical())),
			slog.Int("page", params.Page),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.criteria = criteria
	c.params = pagination.Params{Page: result.Page, PerPage: result.PerPage}
	c.totalPages = result.TotalPages
	c.items = result.Items
	c.searched = true

	if c.onResults != nil {
		c.onResults()
	}
	return nil
}

func (c *Controller) writeURL(criteria Criteria, params pagination.Params) {
	values := criteria.Encode()
	params.Encode(values)
	c.nav.SetQuery(values)
}

// Items returns the currently displayed results.
func (c *Controller) Items() []domain.Listing { return c.items }

// Criteria returns the criteria of the last committed search, or the
// criteria decoded from the URL before any search ran.
func (c *Controller) Criteria() Criteria { return c.criteria }

// Page returns the 1-based page of the displayed results.
func (c *Controller) Page() int { return c.params.Page }

// TotalPages returns the page count of the last committed search.
func (c *Controller) TotalPages() int { return c.totalPages }

// Searched reports whether at least one search has completed.
func (c *Controller) Searched() bool { return c.searched }

// NoResults reports whether the last search completed with an empty
// result set. An empty page is a valid outcome, not an error.
func (c *Controller) NoResults() bool { return c.searched && len(c.items) == 0 }
