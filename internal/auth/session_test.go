package auth

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailuckly/SmartPropertyManagement/internal/config"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	"github.com/ailuckly/SmartPropertyManagement/internal/utils"
)

func testCfg() config.Config {
	return config.Config{
		JWTSecret:         "session-test-secret",
		AccessTTLMin:      15,
		RefreshTTLDays:    7,
		AccessCookieName:  "access_token",
		RefreshCookieName: "refresh_token",
	}
}

func cookieByName(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, ck := range res.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestIssueSetsBothCookies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	issuer := NewSessionIssuer(testCfg(), repository.NewTokenRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, issuer.Issue(context.Background(), c, 7, "alice"))
	require.NoError(t, mock.ExpectationsWereMet())

	res := rec.Result()
	access := cookieByName(t, res, "access_token")
	refresh := cookieByName(t, res, "refresh_token")

	for _, ck := range []*http.Cookie{access, refresh} {
		assert.True(t, ck.HttpOnly, "%s must be HttpOnly", ck.Name)
		assert.Equal(t, "/", ck.Path)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		assert.False(t, ck.Secure, "plain HTTP request must not set Secure")
		assert.Greater(t, ck.MaxAge, 0)
	}

	// The access cookie carries a token whose subject is the username.
	sub, err := utils.ValidateAccessToken("session-test-secret", access.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	// The refresh cookie carries the raw opaque value, never the hash.
	assert.Len(t, refresh.Value, 96)
	assert.Greater(t, refresh.MaxAge, access.MaxAge)
}

func TestIssueSecureMirrorsTLS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))

	issuer := NewSessionIssuer(testCfg(), repository.NewTokenRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "https://example.com/api/auth/login", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, issuer.Issue(context.Background(), c, 7, "alice"))

	res := rec.Result()
	assert.True(t, cookieByName(t, res, "access_token").Secure)
	assert.True(t, cookieByName(t, res, "refresh_token").Secure)
}

func TestClearExpiresBothCookies(t *testing.T) {
	issuer := NewSessionIssuer(testCfg(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	issuer.Clear(c)

	res := rec.Result()
	for _, name := range []string{"access_token", "refresh_token"} {
		ck := cookieByName(t, res, name)
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
		assert.True(t, ck.HttpOnly)
	}
}

func TestRefreshCookieReadback(t *testing.T) {
	issuer := NewSessionIssuer(testCfg(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Empty(t, issuer.RefreshCookie(c), "no cookie means empty value")

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "raw-value"})
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "raw-value", issuer.RefreshCookie(c))
}
