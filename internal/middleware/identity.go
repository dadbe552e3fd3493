package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/config"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	"github.com/ailuckly/SmartPropertyManagement/internal/utils"
)

// ResolveIdentity returns the per-request identity resolver. For every
// request it looks for an access token in the Authorization header first
// and the access cookie second, validates it, and on success resolves the
// principal with a fresh user lookup so current roles (and the soft-delete
// flag) are honored rather than whatever the token was minted with.
//
// Requests with no token, an invalid token or an unresolvable user simply
// continue anonymously. Rejecting protected routes is the job of the
// RequireAuth / RequireRole guards, not the resolver, so login and other
// public endpoints keep working for unauthenticated callers.
func ResolveIdentity(cfg config.Config, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c, cfg.AccessCookieName)
			if raw == "" {
				return next(c)
			}
			username, err := utils.ValidateAccessToken(cfg.JWTSecret, raw)
			if err != nil {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByUsername(ctx, username)
			if err != nil {
				// Unknown or soft-deleted account: the token dies with it.
				return next(c)
			}
			auth.SetPrincipal(c, auth.Principal{ID: u.ID, Username: u.Username, Roles: u.Roles})
			return next(c)
		}
	}
}

// tokenFromRequest extracts a candidate access token, preferring the Bearer
// header over the cookie.
func tokenFromRequest(c echo.Context, cookieName string) string {
	h := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	ck, err := c.Cookie(cookieName)
	if err != nil || ck == nil {
		return ""
	}
	return ck.Value
}
