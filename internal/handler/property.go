package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/model"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
)

// PropertyHandler serves the property CRUD endpoints. Visibility follows
// the three-tier scoping: admins see everything, owners their own rows,
// tenants the properties they hold a lease on.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
	Users      *repository.UserRepo
}

func NewPropertyHandler(p *repository.PropertyRepo, u *repository.UserRepo) *PropertyHandler {
	return &PropertyHandler{Properties: p, Users: u}
}

type propertyReq struct {
	OwnerID       uint64  `json:"owner_id"` // admin only; owners create for themselves
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	PropertyType  string  `json:"property_type"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	SquareFootage int     `json:"square_footage"`
	Status        string  `json:"status"`
	RentAmount    float64 `json:"rent_amount"`
}

type batchStatusReq struct {
	IDs    []uint64 `json:"ids"`
	Status string   `json:"status"`
}

// scopedPropertyFilter narrows a filter to what the principal may see.
func scopedPropertyFilter(p auth.Principal, f *repository.PropertyFilter) {
	switch {
	case p.IsAdmin():
		// unrestricted
	case p.IsOwner():
		f.OwnerID = p.ID
	default:
		f.TenantID = p.ID
	}
}

// List returns a page of properties visible to the principal, optionally
// filtered by ?status and ?keyword.
func (h *PropertyHandler) List(c echo.Context) error {
	p, _ := auth.FromContext(c)
	page, size := pageParams(c)
	f := repository.PropertyFilter{
		Status:   strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Keyword:  strings.TrimSpace(c.QueryParam("keyword")),
		Page:     page,
		PageSize: size,
	}
	if f.Status != "" && !model.ValidPropertyStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	scopedPropertyFilter(p, &f)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Properties.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pageResponse{Items: items, Total: total, Page: page, Size: size})
}

// Get returns one property if the principal may see it.
func (h *PropertyHandler) Get(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prop, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.IsOwner() && !p.IsAdmin() && prop.OwnerID != p.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, prop)
}

// Create inserts a property. Admins may create on behalf of any owner;
// owners only for themselves.
func (h *PropertyHandler) Create(c echo.Context) error {
	p, _ := auth.FromContext(c)
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.PropertyType) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address/property_type required"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.PropertyAvailable
	}
	if !model.ValidPropertyStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ownerID := p.ID
	if p.IsAdmin() && req.OwnerID != 0 {
		ownerID = req.OwnerID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	owner, err := h.Users.GetByID(ctx, ownerID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	prop := model.Property{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		PropertyType:  strings.ToUpper(strings.TrimSpace(req.PropertyType)),
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		Status:        status,
		RentAmount:    req.RentAmount,
	}
	if err := h.Properties.Create(ctx, &prop); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create property failed"})
	}
	return c.JSON(http.StatusCreated, prop)
}

// Update rewrites a property's mutable fields; owners only on their own
// rows.
func (h *PropertyHandler) Update(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != "" && !model.ValidPropertyStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prop, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(prop.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	prop.Address = req.Address
	prop.City = req.City
	prop.State = req.State
	prop.ZipCode = req.ZipCode
	prop.PropertyType = strings.ToUpper(strings.TrimSpace(req.PropertyType))
	prop.Bedrooms = req.Bedrooms
	prop.Bathrooms = req.Bathrooms
	prop.SquareFootage = req.SquareFootage
	if status != "" {
		prop.Status = status
	}
	prop.RentAmount = req.RentAmount

	if err := h.Properties.Update(ctx, prop); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update property failed"})
	}
	return c.JSON(http.StatusOK, prop)
}

// BatchStatus updates the status on a set of properties at once. Owners are
// silently scoped to their own rows; the response reports how many rows
// actually changed.
func (h *PropertyHandler) BatchStatus(c echo.Context) error {
	p, _ := auth.FromContext(c)
	var req batchStatusReq
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids required"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidPropertyStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	var ownerScope uint64
	if !p.IsAdmin() {
		ownerScope = p.ID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Properties.BatchUpdateStatus(ctx, req.IDs, status, ownerScope)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated})
}

// Delete soft-deletes a property; owners only on their own rows.
func (h *PropertyHandler) Delete(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prop, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(prop.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Properties.SoftDelete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
