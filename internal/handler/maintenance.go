package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/model"
	"github.com/ailuckly/SmartPropertyManagement/internal/queue"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	queue_publisher "github.com/ailuckly/SmartPropertyManagement/internal/service"
)

// MaintenanceHandler serves the maintenance request endpoints. Tenants file
// requests against properties they actively lease; owners and admins triage
// them through the status transitions.
type MaintenanceHandler struct {
	Requests *repository.MaintenanceRepo
	Leases   *repository.LeaseRepo
}

func NewMaintenanceHandler(m *repository.MaintenanceRepo, l *repository.LeaseRepo) *MaintenanceHandler {
	return &MaintenanceHandler{Requests: m, Leases: l}
}

type maintenanceReq struct {
	PropertyID  uint64 `json:"property_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type maintenanceStatusReq struct {
	Status string `json:"status"`
}

// List returns a page of maintenance requests visible to the principal,
// optionally filtered by ?status.
func (h *MaintenanceHandler) List(c echo.Context) error {
	p, _ := auth.FromContext(c)
	page, size := pageParams(c)
	f := repository.MaintenanceFilter{
		Status:   strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Page:     page,
		PageSize: size,
	}
	if f.Status != "" && !model.ValidMaintenanceStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	switch {
	case p.IsAdmin():
	case p.IsOwner():
		f.OwnerID = p.ID
	default:
		f.TenantID = p.ID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Requests.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pageResponse{Items: items, Total: total, Page: page, Size: size})
}

// Create files a request. The caller must hold an active lease on the
// property. A maintenance.requested event goes to the broker so the owner
// is notified.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	p, _ := auth.FromContext(c)
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PropertyID == 0 || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id/title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	leased, err := h.Leases.ActiveLeaseForTenant(ctx, p.ID, req.PropertyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !leased && !p.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no active lease on this property"})
	}

	m := model.MaintenanceRequest{
		PropertyID:  req.PropertyID,
		TenantID:    p.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      model.MaintenanceOpen,
	}
	if err := h.Requests.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}

	event := queue.MaintenanceRequestedEvent{
		RequestID:       m.ID,
		PropertyID:      m.PropertyID,
		PropertyAddress: m.PropertyAddress,
		OwnerID:         m.PropertyOwnerID,
		TenantID:        m.TenantID,
		TenantUsername:  m.TenantUsername,
		Title:           m.Title,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishMaintenanceRequested(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, m)
}

// UpdateStatus moves a request along OPEN -> IN_PROGRESS -> RESOLVED.
// Only admins and the property's owner may triage.
func (h *MaintenanceHandler) UpdateStatus(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req maintenanceStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidMaintenanceStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(m.PropertyOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Requests.UpdateStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	m.Status = status
	return c.JSON(http.StatusOK, m)
}

// Delete soft-deletes a request. Admins, the property's owner, or the
// filing tenant may remove it.
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	p, _ := auth.FromContext(c)
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(m.PropertyOwnerID) && m.TenantID != p.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Requests.SoftDelete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
