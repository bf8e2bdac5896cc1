package detail

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
	"github.com/AlessioMITRM/hogu-frontend-sub001/geo"
	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAPI serves one listing and counts fetches.
type fakeAPI struct {
	mu          sync.Mutex
	listing     domain.Listing
	detailErr   error
	viewers     int
	viewersErr  error
	detailDelay time.Duration

	detailHits  int32
	viewersHits int32
}

func (f *fakeAPI) GetDetail(_ context.Context, id string) (domain.Listing, error) {
	atomic.AddInt32(&f.detailHits, 1)
	f.mu.Lock()
	listing, err, delay := f.listing, f.detailErr, f.detailDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return domain.Listing{}, err
	}
	listing.ID = id
	return listing, nil
}

func (f *fakeAPI) Viewers(_ context.Context, _ string) (int, error) {
	atomic.AddInt32(&f.viewersHits, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewers, f.viewersErr
}

type fakeGeocoder struct {
	coords  geo.Coordinates
	err     error
	gotAddr string
	hits    int32
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (geo.Coordinates, error) {
	atomic.AddInt32(&g.hits, 1)
	g.gotAddr = address
	return g.coords, g.err
}

func romeListing() domain.Listing {
	return domain.Listing{
		Vertical: "dining",
		Name:     "Trattoria del Ponte",
		Address:  domain.Address{Street: "Via Roma 1", City: "Roma", Country: "IT"},
		Images:   []string{"a.jpg", "a.jpg"},
	}
}

func TestLoader_LoadAssemblesFullBundle(t *testing.T) {
	api := &fakeAPI{listing: romeListing(), viewers: 7}
	geocoder := &fakeGeocoder{coords: geo.Coordinates{Latitude: 41.9, Longitude: 12.5}}
	loader := NewLoader(api, geocoder, newTestLogger())

	bundle, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, "r-1", bundle.Listing.ID)
	require.NotNil(t, bundle.Viewers)
	assert.Equal(t, 7, *bundle.Viewers)
	require.NotNil(t, bundle.Coordinates)
	assert.Equal(t, 41.9, bundle.Coordinates.Latitude)
	assert.Equal(t, "Via Roma 1, Roma, IT", bundle.Presentation.FormattedAddress)
	assert.Equal(t, []string{"a.jpg"}, bundle.Presentation.Images)

	// Geocoding runs on the fetched address, not on the listing id.
	assert.Equal(t, "Via Roma 1, Roma, IT", geocoder.gotAddr)
}

func TestLoader_EnrichmentFailuresDoNotBlockThePage(t *testing.T) {
	api := &fakeAPI{listing: romeListing(), viewersErr: apperrors.ServiceUnavailable("viewers down")}
	geocoder := &fakeGeocoder{err: apperrors.Transport(context.DeadlineExceeded)}
	loader := NewLoader(api, geocoder, newTestLogger())

	bundle, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Nil(t, bundle.Viewers)
	assert.Nil(t, bundle.Coordinates)
	assert.Equal(t, "Trattoria del Ponte", bundle.Listing.Name)
}

func TestLoader_PrimaryFailureFailsThePageAndAllowsRetry(t *testing.T) {
	api := &fakeAPI{detailErr: apperrors.NotFound("listing", "r-1"), viewers: 3}
	loader := NewLoader(api, nil, newTestLogger())

	_, err := loader.Load(context.Background(), "r-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The guard is cleared on failure, so the same id can be retried.
	api.mu.Lock()
	api.detailErr = nil
	api.listing = romeListing()
	api.mu.Unlock()

	bundle, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Trattoria del Ponte", bundle.Listing.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.detailHits))
}

func TestLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	api := &fakeAPI{listing: romeListing(), viewers: 7, detailDelay: 50 * time.Millisecond}
	loader := NewLoader(api, nil, newTestLogger())

	var wg sync.WaitGroup
	bundles := make([]Bundle, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := loader.Load(context.Background(), "r-1")
			require.NoError(t, err)
			bundles[i] = b
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&api.detailHits))
	for _, b := range bundles {
		assert.Equal(t, "r-1", b.Listing.ID)
	}
}

func TestLoader_CommittedBundleIsServedFromMemory(t *testing.T) {
	api := &fakeAPI{listing: romeListing()}
	loader := NewLoader(api, nil, newTestLogger())

	first, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.detailHits))
}

func TestLoader_DistinctIDsFetchIndependently(t *testing.T) {
	api := &fakeAPI{listing: romeListing()}
	loader := NewLoader(api, nil, newTestLogger())

	_, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), "r-2")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&api.detailHits))
}

func TestLoader_ResetForcesRefetch(t *testing.T) {
	api := &fakeAPI{listing: romeListing()}
	loader := NewLoader(api, nil, newTestLogger())

	_, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	loader.Reset("r-1")
	_, err = loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&api.detailHits))
}

func TestLoader_UnavailableListingStillCommits(t *testing.T) {
	listing := romeListing()
	listing.Unavailable = true
	api := &fakeAPI{listing: listing, viewers: 2}
	loader := NewLoader(api, nil, newTestLogger())

	bundle, err := loader.Load(context.Background(), "r-1")
	require.NoError(t, err)

	assert.True(t, bundle.Listing.Unavailable)
	require.NotNil(t, bundle.Viewers)
	assert.Equal(t, 2, *bundle.Viewers)
}
