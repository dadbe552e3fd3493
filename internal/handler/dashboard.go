package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
)

// DashboardHandler serves the role-scoped landing page counters.
type DashboardHandler struct {
	Stats *repository.StatsRepo
}

func NewDashboardHandler(s *repository.StatsRepo) *DashboardHandler {
	return &DashboardHandler{Stats: s}
}

// Get computes the stats for the principal's scope: everything for admins,
// one owner's portfolio, or one tenant's leases.
func (h *DashboardHandler) Get(c echo.Context) error {
	p, _ := auth.FromContext(c)

	var ownerID, tenantID uint64
	switch {
	case p.IsAdmin():
	case p.IsOwner():
		ownerID = p.ID
	default:
		tenantID = p.ID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Stats.Stats(ctx, ownerID, tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
