package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/model"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
)

func TestScopedPropertyFilter(t *testing.T) {
	admin := auth.Principal{ID: 1, Roles: []string{model.RoleAdmin}}
	owner := auth.Principal{ID: 2, Roles: []string{model.RoleOwner}}
	tenant := auth.Principal{ID: 3, Roles: []string{model.RoleTenant}}

	var f repository.PropertyFilter
	scopedPropertyFilter(admin, &f)
	assert.Zero(t, f.OwnerID)
	assert.Zero(t, f.TenantID)

	f = repository.PropertyFilter{}
	scopedPropertyFilter(owner, &f)
	assert.Equal(t, uint64(2), f.OwnerID)
	assert.Zero(t, f.TenantID)

	f = repository.PropertyFilter{}
	scopedPropertyFilter(tenant, &f)
	assert.Zero(t, f.OwnerID)
	assert.Equal(t, uint64(3), f.TenantID)
}

func propertyRow(id, ownerID uint64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "owner_username", "address", "city", "state", "zip_code",
		"property_type", "bedrooms", "bathrooms", "square_footage", "status",
		"rent_amount", "is_deleted", "created_at", "updated_at",
	}).AddRow(id, ownerID, "olivia", "1 Main St", "Springfield", "IL", "62701",
		"APARTMENT", 2, 1.0, 850, model.PropertyAvailable, 1200.0, false, now, now)
}

func getProperty(t *testing.T, h *PropertyHandler, p auth.Principal, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/properties/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	auth.SetPrincipal(c, p)
	require.NoError(t, h.Get(c))
	return rec
}

func TestPropertyGetOwnerScoping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewPropertyHandler(repository.NewPropertyRepo(db), repository.NewUserRepo(db))

	// The owning user reads their own property.
	mock.ExpectQuery("(?s)SELECT .+ FROM properties WHERE id=").
		WithArgs(uint64(10)).
		WillReturnRows(propertyRow(10, 2))
	rec := getProperty(t, h, auth.Principal{ID: 2, Roles: []string{model.RoleOwner}}, "10")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different owner gets 403 on the same row.
	mock.ExpectQuery("(?s)SELECT .+ FROM properties WHERE id=").
		WithArgs(uint64(10)).
		WillReturnRows(propertyRow(10, 2))
	rec = getProperty(t, h, auth.Principal{ID: 5, Roles: []string{model.RoleOwner}}, "10")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin sees everything.
	mock.ExpectQuery("(?s)SELECT .+ FROM properties WHERE id=").
		WithArgs(uint64(10)).
		WillReturnRows(propertyRow(10, 2))
	rec = getProperty(t, h, auth.Principal{ID: 1, Roles: []string{model.RoleAdmin}}, "10")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewPropertyHandler(repository.NewPropertyRepo(db), repository.NewUserRepo(db))

	mock.ExpectQuery("(?s)SELECT .+ FROM properties WHERE id=").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := getProperty(t, h, auth.Principal{ID: 1, Roles: []string{model.RoleAdmin}}, "404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
