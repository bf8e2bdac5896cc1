package session

import (
	"time"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

// Role constants define the allowed principal roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleProvider = "PROVIDER"
	RoleAdmin    = "ADMIN"
)

// ValidRoles returns the set of valid principal roles.
func ValidRoles() []string {
	return []string{RoleCustomer, RoleProvider, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid principal role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// Vertical identifies one of the marketplace booking verticals.
type Vertical string

// Marketplace verticals a provider can be entitled to manage.
const (
	VerticalDining    Vertical = "dining"
	VerticalLodging   Vertical = "lodging"
	VerticalClubs     Vertical = "clubs"
	VerticalTransfers Vertical = "transfers"
	VerticalDeposit   Vertical = "deposit"
)

// Principal is the identity attached to a session.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session holds the signed-in principal and its credential pair.
// The zero value is the signed-out state.
type Session struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Principal    Principal  `json:"principal"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Entitlements []Vertical `json:"entitlements,omitempty"`
}

// IsZero reports whether the session is the signed-out state.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// Expired reports whether the access credential has passed its expiry.
// A zero expiry is treated as unknown, not expired; the server remains
// the authority and will answer 401 if the credential is stale.
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// Validate enforces the credential-pair invariant: access and refresh
// tokens are both present or both absent, never half-populated.
func (s Session) Validate() error {
	if (s.AccessToken == "") != (s.RefreshToken == "") {
		return apperrors.InvalidInput("session must carry both credentials or neither")
	}
	if !s.IsZero() && s.Principal.Role != "" && !IsValidRole(s.Principal.Role) {
		return apperrors.InvalidInput("unknown principal role " + s.Principal.Role)
	}
	return nil
}
