package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/config"
	"github.com/ailuckly/SmartPropertyManagement/internal/model"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	"github.com/ailuckly/SmartPropertyManagement/internal/utils"
)

type authEnv struct {
	handler *AuthHandler
	mock    sqlmock.Sqlmock
	e       *echo.Echo
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret:         "handler-test-secret",
		AccessTTLMin:      15,
		RefreshTTLDays:    7,
		AccessCookieName:  "access_token",
		RefreshCookieName: "refresh_token",
		BcryptCost:        bcrypt.MinCost,
	}
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := auth.NewSessionIssuer(cfg, tokens)

	return &authEnv{
		handler: NewAuthHandler(cfg, users, tokens, sessions),
		mock:    mock,
		e:       echo.New(),
	}
}

func (env *authEnv) post(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func expectGetUser(mock sqlmock.Sqlmock, byUsername bool, id uint64, username, passwordHash, role string) {
	now := time.Now().UTC()
	q := "SELECT .+ FROM users WHERE id="
	var arg driverValue = id
	if byUsername {
		q = "SELECT .+ FROM users WHERE username="
		arg = username
	}
	mock.ExpectQuery(q).
		WithArgs(arg).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "first_name", "last_name",
			"phone_number", "is_deleted", "created_at", "updated_at",
		}).AddRow(id, username, username+"@example.com", passwordHash, "", "", "", false, now, now))
	mock.ExpectQuery("SELECT r.name FROM roles").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(role))
}

type driverValue = any

func expectRotate(mock sqlmock.Sqlmock, userID uint64) {
	mock.ExpectExec("(?s)INSERT INTO refresh_tokens.+ON DUPLICATE KEY UPDATE").
		WithArgs(userID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not in response", name)
	return nil
}

func errBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestLoginSuccessSetsSession(t *testing.T) {
	env := newAuthEnv(t)
	hash := mustHash(t, "correct horse")

	expectGetUser(env.mock, true, 7, "alice", hash, model.RoleTenant)
	expectRotate(env.mock, 7)

	c, rec := env.post("/api/auth/login", `{"username":"alice","password":"correct horse"}`)
	require.NoError(t, env.handler.Login(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, env.mock.ExpectationsWereMet())

	access := responseCookie(t, rec, "access_token")
	refresh := responseCookie(t, rec, "refresh_token")
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	sub, err := utils.ValidateAccessToken("handler-test-secret", access.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	var body struct {
		User struct {
			ID       uint64   `json:"id"`
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(7), body.User.ID)
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, []string{model.RoleTenant}, body.User.Roles)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newAuthEnv(t)
	hash := mustHash(t, "correct horse")

	// Unknown username.
	env.mock.ExpectQuery("SELECT .+ FROM users WHERE username=").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "first_name", "last_name",
			"phone_number", "is_deleted", "created_at", "updated_at",
		}))
	c, recUnknown := env.post("/api/auth/login", `{"username":"nobody","password":"whatever"}`)
	require.NoError(t, env.handler.Login(c))

	// Known username, wrong password.
	expectGetUser(env.mock, true, 7, "alice", hash, model.RoleTenant)
	c, recWrongPass := env.post("/api/auth/login", `{"username":"alice","password":"wrong"}`)
	require.NoError(t, env.handler.Login(c))

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)

	// Same status, same body: the endpoint must not leak which usernames exist.
	assert.Equal(t, "invalid credentials", errBody(t, recUnknown))
	assert.Equal(t, errBody(t, recUnknown), errBody(t, recWrongPass))

	// No session material on either failure.
	assert.Empty(t, recUnknown.Result().Cookies())
	assert.Empty(t, recWrongPass.Result().Cookies())
}

func TestLoginValidation(t *testing.T) {
	env := newAuthEnv(t)

	c, rec := env.post("/api/auth/login", `{"username":"","password":""}`)
	require.NoError(t, env.handler.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newAuthEnv(t)

	c, rec := env.post("/api/auth/refresh-token", "")
	require.NoError(t, env.handler.Refresh(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid refresh token", errBody(t, rec))
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthEnv(t)
	raw := strings.Repeat("ab", 48)

	env.mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow(uint64(7), time.Now().UTC().Add(24*time.Hour)))
	expectGetUser(env.mock, false, 7, "alice", "hash", model.RoleTenant)
	expectRotate(env.mock, 7)

	c, rec := env.post("/api/auth/refresh-token", "")
	c.Request().AddCookie(&http.Cookie{Name: "refresh_token", Value: raw})
	require.NoError(t, env.handler.Refresh(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, env.mock.ExpectationsWereMet())

	// The response carries a new refresh value; presenting the old one
	// again would hash to a row that no longer exists.
	refreshed := responseCookie(t, rec, "refresh_token")
	assert.NotEqual(t, raw, refreshed.Value)
	assert.NotEmpty(t, responseCookie(t, rec, "access_token").Value)
}

func TestRefreshWithRevokedToken(t *testing.T) {
	env := newAuthEnv(t)
	raw := strings.Repeat("cd", 48)

	env.mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}))

	c, rec := env.post("/api/auth/refresh-token", "")
	c.Request().AddCookie(&http.Cookie{Name: "refresh_token", Value: raw})
	require.NoError(t, env.handler.Refresh(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid refresh token", errBody(t, rec))
}

func TestLogoutRevokesAndClears(t *testing.T) {
	env := newAuthEnv(t)
	raw := strings.Repeat("ef", 48)

	env.mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := env.post("/api/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: "refresh_token", Value: raw})
	auth.SetPrincipal(c, auth.Principal{ID: 7, Username: "alice", Roles: []string{model.RoleTenant}})
	require.NoError(t, env.handler.Logout(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, env.mock.ExpectationsWereMet())

	for _, name := range []string{"access_token", "refresh_token"} {
		ck := responseCookie(t, rec, name)
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}
}

func TestLogoutAnonymousStillSucceeds(t *testing.T) {
	env := newAuthEnv(t)

	// No principal, no cookie: nothing to revoke, still a clean 200.
	c, rec := env.post("/api/auth/logout", "")
	require.NoError(t, env.handler.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, responseCookie(t, rec, "refresh_token").Value)
}

func TestMeRequiresPrincipal(t *testing.T) {
	env := newAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	require.NoError(t, env.handler.Me(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsFreshProfile(t *testing.T) {
	env := newAuthEnv(t)

	expectGetUser(env.mock, false, 7, "alice", "hash", model.RoleTenant)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	auth.SetPrincipal(c, auth.Principal{ID: 7, Username: "alice", Roles: []string{model.RoleTenant}})
	require.NoError(t, env.handler.Me(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "alice@example.com", body.User.Email)
}

func TestRegisterCapsRole(t *testing.T) {
	env := newAuthEnv(t)

	env.mock.ExpectBegin()
	env.mock.ExpectExec("INSERT INTO users").
		WithArgs("mallory", "mallory@example.com", sqlmock.AnyArg(), "", "", "").
		WillReturnResult(sqlmock.NewResult(9, 1))
	// Requested ADMIN must be downgraded to the default TENANT.
	env.mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(int64(9), model.RoleTenant).
		WillReturnResult(sqlmock.NewResult(1, 1))
	env.mock.ExpectCommit()
	expectRotate(env.mock, 9)
	expectGetUser(env.mock, false, 9, "mallory", "hash", model.RoleTenant)

	c, rec := env.post("/api/auth/register",
		`{"username":"mallory","email":"mallory@example.com","password":"pw","role":"ADMIN"}`)
	require.NoError(t, env.handler.Register(c))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, env.mock.ExpectationsWereMet())

	var body struct {
		User struct {
			Roles []string `json:"roles"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{model.RoleTenant}, body.User.Roles)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newAuthEnv(t)

	env.mock.ExpectBegin()
	env.mock.ExpectExec("INSERT INTO users").
		WillReturnError(errDuplicate("users.username"))
	env.mock.ExpectRollback()

	c, rec := env.post("/api/auth/register",
		`{"username":"alice","email":"alice2@example.com","password":"pw"}`)
	require.NoError(t, env.handler.Register(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username already exists", errBody(t, rec))
}

type errDuplicate string

func (e errDuplicate) Error() string {
	return "Error 1062 (23000): Duplicate entry for key '" + string(e) + "'"
}
