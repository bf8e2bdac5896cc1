package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/AlessioMITRM/hogu-frontend-sub001/client"
	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/logger"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/pagination"
	"github.com/AlessioMITRM/hogu-frontend-sub001/search"
	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// basePaths maps each vertical to its API prefix.
var basePaths = map[session.Vertical]string{
	session.VerticalDining:    "/api/dining",
	session.VerticalLodging:   "/api/lodging",
	session.VerticalClubs:     "/api/clubs",
	session.VerticalTransfers: "/api/transfers",
	session.VerticalDeposit:   "/api/deposit",
}

// searchPayload is the server response for listing searches.
type searchPayload struct {
	Items      []domain.Listing `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
}

// viewersPayload is the live-viewer count response.
type viewersPayload struct {
	Viewers int `json:"viewers"`
}

// ListingService exposes the search, detail, enrichment and booking
// operations of one marketplace vertical.
type ListingService struct {
	api      *client.Client
	vertical session.Vertical
	basePath string
	logger   *slog.Logger
}

// NewListingService creates the facade for the given vertical.
func NewListingService(api *client.Client, vertical session.Vertical, log *slog.Logger) *ListingService {
	return &ListingService{
		api:      api,
		vertical: vertical,
		basePath: basePaths[vertical],
		logger:   log,
	}
}

// Vertical returns the marketplace vertical this facade serves.
func (s *ListingService) Vertical() session.Vertical {
	return s.vertical
}

// Search runs one paginated listing search. The criteria encode
// themselves into query parameters; page state rides alongside them.
func (s *ListingService) Search(ctx context.Context, criteria search.Criteria, params pagination.Params) (pagination.Result[domain.Listing], error) {
	query := criteria.Encode()
	params.Encode(query)

	var payload searchPayload
	if err := s.api.Get(ctx, s.basePath+"/listings", query, &payload); err != nil {
		return pagination.Result[domain.Listing]{}, err
	}

	page := payload.Page
	if page < 1 {
		page = params.Page
	}
	perPage := payload.PerPage
	if perPage < 1 {
		perPage = params.PerPage
	}
	return pagination.NewResult(payload.Items, payload.TotalCount, pagination.Params{Page: page, PerPage: perPage}), nil
}

// GetDetail fetches the full record of one listing.
func (s *ListingService) GetDetail(ctx context.Context, id string) (domain.Listing, error) {
	var listing domain.Listing
	if err := s.api.Get(ctx, s.basePath+"/listings/"+url.PathEscape(id), nil, &listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// Viewers fetches the live-viewer count of one listing. The count is
// enrichment data; callers treat a failure as a missing count, never as
// a page failure.
func (s *ListingService) Viewers(ctx context.Context, id string) (int, error) {
	var payload viewersPayload
	if err := s.api.Get(ctx, s.basePath+"/listings/"+url.PathEscape(id)+"/viewers", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Viewers, nil
}

// Book submits a booking for this vertical. Every submission carries a
// fresh idempotency key so a retried request cannot double-book.
func (s *ListingService) Book(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	req.Vertical = s.vertical

	header := http.Header{}
	header.Set("Idempotency-Key", uuid.New().String())

	var booking domain.Booking
	err := s.api.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   s.basePath + "/bookings",
		Body:   req,
		Header: header,
	}, &booking)
	if err != nil {
		return domain.Booking{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "booking submitted",
		slog.String("vertical", string(s.vertical)),
		slog.String("listing_id", req.ListingID),
		slog.String("booking_id", booking.ID),
		slog.String("status", booking.Status),
	)
	return booking, nil
}

// Services bundles the authentication facade and one listing facade per
// vertical, ready to hand to controllers and aggregators.
type Services struct {
	Auth      *AuthService
	Dining    *ListingService
	Lodging   *ListingService
	Clubs     *ListingService
	Transfers *ListingService
	Deposit   *ListingService
}

// NewServices wires every facade onto one request client.
func NewServices(api *client.Client, store session.Store, log *slog.Logger) *Services {
	return &Services{
		Auth:      NewAuthService(api, store, log),
		Dining:    NewListingService(api, session.VerticalDining, log),
		Lodging:   NewListingService(api, session.VerticalLodging, log),
		Clubs:     NewListingService(api, session.VerticalClubs, log),
		Transfers: NewListingService(api, session.VerticalTransfers, log),
		Deposit:   NewListingService(api, session.VerticalDeposit, log),
	}
}

// ByVertical returns the listing facade for the given vertical, or nil
// for an unknown one.
func (s *Services) ByVertical(v session.Vertical) *ListingService {
	switch v {
	case session.VerticalDining:
		return s.Dining
	case session.VerticalLodging:
		return s.Lodging
	case session.VerticalClubs:
		return s.Clubs
	case session.VerticalTransfers:
		return s.Transfers
	case session.VerticalDeposit:
		return s.Deposit
	default:
		return nil
	}
}
