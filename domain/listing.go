package domain

import (
	"encoding/json"

	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// Address is the structured location of a listing.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Listing is a bookable entity in any vertical: a restaurant, a lodging
// unit, a club event, a transfer offering or a luggage deposit point.
type Listing struct {
	ID          string           `json:"id"`
	Vertical    session.Vertical `json:"vertical"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Address     Address          `json:"address"`
	Images      []string         `json:"images,omitempty"`
	PriceCents  int64            `json:"price_cents,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Rating      float64          `json:"rating,omitempty"`
	Capacity    int              `json:"capacity,omitempty"`
	Unavailable bool             `json:"unavailable,omitempty"`

	// Menu carries the vertical-specific structured sub-document
	// (a dining menu, a room inventory, an event programme). It is
	// parsed lazily by the detail layer.
	Menu json.RawMessage `json:"menu,omitempty"`

	ProviderID string `json:"provider_id,omitempty"`
}
