// Package geo resolves free-text addresses into coordinates. Geocoding
// is enrichment data: callers must treat any failure here as non-fatal.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

// Coordinates is a geocoded point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// Doer is the interface for executing HTTP requests.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPGeocoder queries a Nominatim-compatible search endpoint.
type HTTPGeocoder struct {
	baseURL   string
	transport Doer
}

// NewHTTPGeocoder creates a geocoder against the given search endpoint,
// e.g. "https://nominatim.openstreetmap.org".
func NewHTTPGeocoder(baseURL string, transport Doer) *HTTPGeocoder {
	return &HTTPGeocoder{baseURL: baseURL, transport: transport}
}

// nominatimResult is one entry of the search response array.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode implements Geocoder.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	if address == "" {
		return Coordinates{}, apperrors.InvalidInput("address is required")
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+query.Encode(), http.NoBody)
	if err != nil {
		return Coordinates{}, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.transport.Do(ctx, req)
	if err != nil {
		return Coordinates{}, apperrors.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, apperrors.Transport(fmt.Errorf("geocoder returned status %d", resp.StatusCode))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, apperrors.Transport(fmt.Errorf("decode geocode response: %w", err))
	}
	if len(results) == 0 {
		return Coordinates{}, apperrors.NotFound("address", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}
