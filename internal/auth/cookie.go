package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// setTokenCookie writes an HttpOnly cookie carrying a credential. The Secure
// flag mirrors whether the inbound request itself arrived over TLS, so the
// same binary works behind local HTTP in dev and HTTPS in production.
// SameSite=Lax stops the cookie riding along on cross-site POSTs while still
// allowing top-level navigation.
func setTokenCookie(c echo.Context, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearTokenCookie expires a cookie by re-issuing it empty with a negative
// Max-Age. Done unconditionally on logout, whether or not a server-side
// token existed to revoke.
func clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
}

// readCookie returns the named cookie's value, or "" when absent.
func readCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil || ck == nil {
		return ""
	}
	return ck.Value
}
