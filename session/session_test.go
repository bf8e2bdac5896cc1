package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

func TestSession_IsZero(t *testing.T) {
	assert.True(t, Session{}.IsZero())
	assert.False(t, Session{AccessToken: "a", RefreshToken: "r"}.IsZero())
}

func TestSession_Validate_PairInvariant(t *testing.T) {
	assert.NoError(t, Session{}.Validate())
	assert.NoError(t, Session{AccessToken: "a", RefreshToken: "r"}.Validate())

	err := Session{AccessToken: "a"}.Validate()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = Session{RefreshToken: "r"}.Validate()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSession_Validate_Role(t *testing.T) {
	ok := Session{AccessToken: "a", RefreshToken: "r", Principal: Principal{Role: RoleCustomer}}
	assert.NoError(t, ok.Validate())

	bad := Session{AccessToken: "a", RefreshToken: "r", Principal: Principal{Role: "SUPERUSER"}}
	assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidInput)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Session{}.Expired(now), "zero expiry is unknown, not expired")
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r))
	}
	assert.False(t, IsValidRole("customer"), "roles are case-sensitive")
	assert.False(t, IsValidRole(""))
}
