package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/config"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	"github.com/ailuckly/SmartPropertyManagement/internal/utils"
)

// SessionIssuer mints the access/refresh token pair for login, registration
// and refresh, persists the rotated refresh token and materializes both
// cookies on the response. Access tokens are never issued without rotating
// the refresh token alongside: the two credentials age together, and a
// refresh value presented after a later rotation (or logout) finds no
// matching row and dies.
type SessionIssuer struct {
	cfg    config.Config
	tokens *repository.TokenRepo
}

// NewSessionIssuer wires the issuer with its configuration and token store.
func NewSessionIssuer(cfg config.Config, tokens *repository.TokenRepo) *SessionIssuer {
	return &SessionIssuer{cfg: cfg, tokens: tokens}
}

// Issue creates a fresh token pair for the given user, replaces the user's
// stored refresh token atomically and sets both HttpOnly cookies. The
// subject of the access token is the username.
func (s *SessionIssuer) Issue(ctx context.Context, c echo.Context, userID uint64, username string) error {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, username, s.cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := s.tokens.Rotate(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return err
	}
	setTokenCookie(c, s.cfg.AccessCookieName, access.Token, access.Exp)
	setTokenCookie(c, s.cfg.RefreshCookieName, refresh.Raw, refresh.Exp)
	return nil
}

// Clear expires both auth cookies on the response. It touches no server
// state; revocation is the caller's job.
func (s *SessionIssuer) Clear(c echo.Context) {
	clearTokenCookie(c, s.cfg.AccessCookieName)
	clearTokenCookie(c, s.cfg.RefreshCookieName)
}

// RefreshCookie returns the raw refresh token from the request cookie,
// or "" when the cookie is absent.
func (s *SessionIssuer) RefreshCookie(c echo.Context) string {
	return readCookie(c, s.cfg.RefreshCookieName)
}
