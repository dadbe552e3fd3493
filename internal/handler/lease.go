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

// LeaseHandler serves the lease endpoints. Creating a lease is restricted
// to admins and the property's owner; tenants see only their own leases.
type LeaseHandler struct {
	Leases     *repository.LeaseRepo
	Properties *repository.PropertyRepo
	Users      *repository.UserRepo
}

func NewLeaseHandler(l *repository.LeaseRepo, p *repository.PropertyRepo, u *repository.UserRepo) *LeaseHandler {
	return &LeaseHandler{Leases: l, Properties: p, Users: u}
}

type leaseReq struct {
	PropertyID uint64  `json:"property_id"`
	TenantID   uint64  `json:"tenant_id"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`
	RentAmount float64 `json:"rent_amount"`
}

type leaseStatusReq struct {
	Status string `json:"status"`
}

// scopedLeaseFilter narrows a filter to what the principal may see.
func scopedLeaseFilter(p auth.Principal, f *repository.LeaseFilter) {
	switch {
	case p.IsAdmin():
	case p.IsOwner():
		f.OwnerID = p.ID
	default:
		f.TenantID = p.ID
	}
}

// List returns a page of leases visible to the principal.
func (h *LeaseHandler) List(c echo.Context) error {
	p, _ := auth.FromContext(c)
	page, size := pageParams(c)
	f := repository.LeaseFilter{
		Status:   strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Page:     page,
		PageSize: size,
	}
	if f.Status != "" && !model.ValidLeaseStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	scopedLeaseFilter(p, &f)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Leases.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pageResponse{Items: items, Total: total, Page: page, Size: size})
}

// Get returns one lease if the principal may see it.
func (h *LeaseHandler) Get(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lease, err := h.Leases.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lease not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !leaseVisible(p, lease) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, lease)
}

// leaseVisible reports whether the principal may see a lease: admins
// always, the property's owner, or the lease's tenant.
func leaseVisible(p auth.Principal, l *model.Lease) bool {
	return p.IsAdmin() || l.PropertyOwnerID == p.ID || l.TenantID == p.ID
}

// Create signs a tenant onto a property. The property must exist, must not
// already carry an active lease, the tenant must be an active account, and
// the caller must be an admin or the property's owner. On success the
// property flips to RENTED.
func (h *LeaseHandler) Create(c echo.Context) error {
	p, _ := auth.FromContext(c)
	var req leaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PropertyID == 0 || req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id/tenant_id required"})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil || !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prop, err := h.Properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(prop.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if _, err := h.Users.GetByID(ctx, req.TenantID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	busy, err := h.Leases.HasActiveLease(ctx, req.PropertyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if busy {
		return c.JSON(http.StatusConflict, echo.Map{"error": "property already leased"})
	}

	lease := model.Lease{
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		StartDate:  start,
		EndDate:    end,
		RentAmount: req.RentAmount,
		Status:     model.LeaseActive,
	}
	if err := h.Leases.Create(ctx, &lease); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lease failed"})
	}

	prop.Status = model.PropertyRented
	if err := h.Properties.Update(ctx, prop); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update property failed"})
	}
	return c.JSON(http.StatusCreated, lease)
}

// UpdateStatus transitions a lease between ACTIVE, ENDED and TERMINATED.
// When a lease leaves ACTIVE the property goes back to AVAILABLE.
func (h *LeaseHandler) UpdateStatus(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req leaseStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidLeaseStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lease, err := h.Leases.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lease not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(lease.PropertyOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Leases.UpdateStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lease failed"})
	}
	if status != model.LeaseActive {
		if prop, err := h.Properties.GetByID(ctx, lease.PropertyID); err == nil {
			prop.Status = model.PropertyAvailable
			_ = h.Properties.Update(ctx, prop)
		}
	}
	lease.Status = status
	return c.JSON(http.StatusOK, lease)
}

// Delete soft-deletes a lease (admin or owning landlord).
func (h *LeaseHandler) Delete(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lease, err := h.Leases.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lease not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(lease.PropertyOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Leases.SoftDelete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
