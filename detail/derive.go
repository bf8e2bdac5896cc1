// Package detail assembles everything a listing detail page needs: the
// primary record, optional enrichment data (coordinates, live-viewer
// count) and derived presentation fields. Only the primary record gates
// the page; enrichment failures degrade to absent values.
package detail

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
)

// Menu is the parsed vertical-specific sub-document of a listing: a
// dining menu, a room inventory, an event programme.
type Menu struct {
	Sections []MenuSection `json:"sections"`
}

// MenuSection groups menu items under a heading.
type MenuSection struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// MenuItem is one orderable or bookable entry of a menu section.
type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// Presentation holds the display fields derived from a listing record.
// Derivation is pure: the same record always yields the same values.
type Presentation struct {
	FormattedAddress string
	Images           []string
	Menu             *Menu
	PriceLabel       string
}

// Derive computes the presentation fields for a committed record. A
// malformed menu sub-document degrades to a nil menu, never to a page
// failure.
func Derive(listing domain.Listing) Presentation {
	menu, err := ParseMenu(listing.Menu)
	if err != nil {
		menu = nil
	}
	return Presentation{
		FormattedAddress: FormatAddress(listing.Address),
		Images:           NormalizeImages(listing.Images),
		Menu:             menu,
		PriceLabel:       PriceLabel(listing.PriceCents, listing.Currency),
	}
}

// FormatAddress renders an address as a single display line, skipping
// absent parts.
func FormatAddress(a domain.Address) string {
	parts := make([]string, 0, 4)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	city := a.City
	if a.PostalCode != "" && city != "" {
		city = a.PostalCode + " " + city
	}
	if city != "" {
		parts = append(parts, city)
	}
	if a.Region != "" {
		parts = append(parts, a.Region)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// NormalizeImages drops empty and duplicate entries while preserving
// order, so galleries never render blank or repeated tiles.
func NormalizeImages(images []string) []string {
	if len(images) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(images))
	out := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if _, dup := seen[img]; dup {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseMenu decodes the raw menu sub-document. An absent document
// yields a nil menu and no error.
func ParseMenu(raw json.RawMessage) (*Menu, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var menu Menu
	if err := json.Unmarshal(raw, &menu); err != nil {
		return nil, fmt.Errorf("parse menu document: %w", err)
	}
	if len(menu.Sections) == 0 {
		return nil, nil
	}
	return &menu, nil
}

// PriceLabel renders a price in minor units as a display string, e.g.
// "EUR 210.00". A zero price yields the empty string.
func PriceLabel(cents int64, currency string) string {
	if cents <= 0 {
		return ""
	}
	if currency == "" {
		currency = "EUR"
	}
	return fmt.Sprintf("%s %d.%02d", currency, cents/100, cents%100)
}
