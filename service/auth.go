// Package service groups the outbound API operations behind named
// facades: one authentication service and one listing service per
// marketplace vertical. Facades validate nothing, delegate to the
// request client, normalize payload shapes and surface only AppErrors.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlessioMITRM/hogu-frontend-sub001/client"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/logger"
	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// LoginInput is the credential sign-in payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyCodeInput confirms a one-time code sent to the user's phone.
type VerifyCodeInput struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// authPayload is the server response for every operation that opens a
// session.
type authPayload struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         session.Principal  `json:"user"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Entitlements []session.Vertical `json:"entitlements,omitempty"`
}

// AuthService opens and closes sessions. Every successful operation
// persists the full session wholesale; Logout clears it and fires the
// store's sign-out hook.
type AuthService struct {
	api    *client.Client
	store  session.Store
	logger *slog.Logger
}

// NewAuthService creates the authentication facade.
func NewAuthService(api *client.Client, store session.Store, log *slog.Logger) *AuthService {
	return &AuthService{
		api:    api,
		store:  store,
		logger: log,
	}
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (session.Session, error) {
	return s.open(ctx, "/api/auth/register", input)
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (session.Session, error) {
	return s.open(ctx, "/api/auth/login", input)
}

// VerifyCode exchanges a one-time code for a session.
func (s *AuthService) VerifyCode(ctx context.Context, input VerifyCodeInput) (session.Session, error) {
	return s.open(ctx, "/api/auth/verify-code", input)
}

func (s *AuthService) open(ctx context.Context, path string, input any) (session.Session, error) {
	var payload authPayload
	if err := s.api.Post(ctx, path, input, &payload); err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		Principal:    payload.User,
		ExpiresAt:    payload.ExpiresAt,
		Entitlements: payload.Entitlements,
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = client.TokenExpiry(payload.AccessToken)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return session.Session{}, err
	}

	ctx = logger.WithPrincipalID(ctx, sess.Principal.ID)
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "session opened",
		slog.String("role", sess.Principal.Role),
	)
	return sess, nil
}

// Current returns the stored session; the zero session means signed out.
func (s *AuthService) Current(ctx context.Context) (session.Session, error) {
	return s.store.Load(ctx)
}

// Logout revokes the session server-side on a best-effort basis and
// always clears the local session. The store's sign-out hook fires
// exactly once.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Post(ctx, "/api/auth/logout", nil, nil); err != nil {
		s.logger.WarnContext(ctx, "server-side logout failed, clearing locally",
			slog.String("error", err.Error()),
		)
	}
	return s.store.Clear(ctx)
}
