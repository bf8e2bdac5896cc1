package detail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
	"github.com/AlessioMITRM/hogu-frontend-sub001/geo"
)

// ListingAPI is the slice of a vertical facade the loader needs.
type ListingAPI interface {
	GetDetail(ctx context.Context, id string) (domain.Listing, error)
	Viewers(ctx context.Context, id string) (int, error)
}

// Bundle is everything a detail page renders. Coordinates and Viewers
// are enrichment data and stay nil when their fetch fails; only a
// missing Listing is a page-level failure.
type Bundle struct {
	Listing      domain.Listing
	Coordinates  *geo.Coordinates
	Viewers      *int
	Presentation Presentation
}

// flight is one in-progress or committed load for a listing id.
type flight struct {
	done   chan struct{}
	bundle Bundle
	err    error
}

// Loader assembles detail bundles for one page instance. Loads are
// guarded per listing id: concurrent requests for the same id share a
// single fetch, a committed bundle is served from memory, and a failed
// primary fetch clears the guard so the same id can be retried.
type Loader struct {
	api      ListingAPI
	geocoder geo.Geocoder
	logger   *slog.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

// NewLoader creates a detail loader. geocoder may be nil, in which case
// bundles carry no coordinates.
func NewLoader(api ListingAPI, geocoder geo.Geocoder, log *slog.Logger) *Loader {
	return &Loader{
		api:      api,
		geocoder: geocoder,
		logger:   log,
		flights:  make(map[string]*flight),
	}
}

// Load returns the detail bundle for the given listing. The primary
// record and the live-viewer count are fetched concurrently; geocoding
// runs once the record's address is known. An unavailable listing still
// yields a complete bundle with the Unavailable flag set.
func (l *Loader) Load(ctx context.Context, id string) (Bundle, error) {
	l.mu.Lock()
	if f, ok := l.flights[id]; ok {
		l.mu.Unlock()
		select {
		case <-f.done:
			return f.bundle, f.err
		case <-ctx.Done():
			return Bundle{}, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	l.flights[id] = f
	l.mu.Unlock()

	f.bundle, f.err = l.fetch(ctx, id)
	if f.err != nil {
		l.mu.Lock()
		if l.flights[id] == f {
			delete(l.flights, id)
		}
		l.mu.Unlock()
	}
	close(f.done)
	return f.bundle, f.err
}

// Reset forgets the committed bundle for the given id so the next Load
// fetches fresh data.
func (l *Loader) Reset(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.flights, id)
}

func (l *Loader) fetch(ctx context.Context, id string) (Bundle, error) {
	type viewersResult struct {
		count int
		err   error
	}
	viewersCh := make(chan viewersResult, 1)
	go func() {
		count, err := l.api.Viewers(ctx, id)
		viewersCh <- viewersResult{count: count, err: err}
	}()

	listing, err := l.api.GetDetail(ctx, id)
	if err != nil {
		// Drain the enrichment fetch; its outcome no longer matters.
		<-viewersCh
		return Bundle{}, err
	}

	bundle := Bundle{
		Listing:      listing,
		Presentation: Derive(listing),
	}

	if v := <-viewersCh; v.err != nil {
		l.logger.WarnContext(ctx, "viewer count unavailable",
			slog.String("listing_id", id),
			slog.String("error", v.err.Error()),
		)
	} else {
		bundle.Viewers = &v.count
	}

	if coords, ok := l.geocode(ctx, id, bundle.Presentation.FormattedAddress); ok {
		bundle.Coordinates = &coords
	}

	return bundle, nil
}

func (l *Loader) geocode(ctx context.Context, id, address string) (geo.Coordinates, bool) {
	if l.geocoder == nil || address == "" {
		return geo.Coordinates{}, false
	}
	coords, err := l.geocoder.Geocode(ctx, address)
	if err != nil {
		l.logger.WarnContext(ctx, "geocoding unavailable",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
		return geo.Coordinates{}, false
	}
	return coords, true
}
