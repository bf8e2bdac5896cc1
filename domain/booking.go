package domain

import (
	"time"

	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// Booking status constants as returned by the server.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingRejected  = "REJECTED"
	BookingCancelled = "CANCELLED"
)

// BookingRequest is the submission payload for any vertical. Fields that
// do not apply to a vertical are left zero and omitted on the wire.
type BookingRequest struct {
	ListingID string           `json:"listing_id"`
	Vertical  session.Vertical `json:"vertical"`
	DateFrom  string           `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo    string           `json:"date_to,omitempty"`
	Time      string           `json:"time,omitempty"` // HH:MM
	Guests    int              `json:"guests,omitempty"`
	Rooms     int              `json:"rooms,omitempty"`
	Bags      int              `json:"bags,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// Booking is a confirmed or pending reservation record.
type Booking struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
