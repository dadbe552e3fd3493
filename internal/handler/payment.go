package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
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

// PaymentHandler serves the payment endpoints: recording rent payments,
// scoped listing, and CSV export of the visible history.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Leases   *repository.LeaseRepo
}

func NewPaymentHandler(p *repository.PaymentRepo, l *repository.LeaseRepo) *PaymentHandler {
	return &PaymentHandler{Payments: p, Leases: l}
}

type paymentReq struct {
	LeaseID       uint64  `json:"lease_id"`
	Amount        float64 `json:"amount"`
	PaymentDate   string  `json:"payment_date"` // YYYY-MM-DD, defaults to today
	PaymentMethod string  `json:"payment_method"`
}

// scopedPaymentFilter narrows a filter to what the principal may see.
func scopedPaymentFilter(p auth.Principal, f *repository.PaymentFilter) {
	switch {
	case p.IsAdmin():
	case p.IsOwner():
		f.OwnerID = p.ID
	default:
		f.TenantID = p.ID
	}
}

// List returns a page of payments visible to the principal.
func (h *PaymentHandler) List(c echo.Context) error {
	p, _ := auth.FromContext(c)
	page, size := pageParams(c)
	f := repository.PaymentFilter{Page: page, PageSize: size}
	scopedPaymentFilter(p, &f)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Payments.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pageResponse{Items: items, Total: total, Page: page, Size: size})
}

// Create records a payment against a lease. Admins and the property's
// owner may record for any lease; a tenant only against their own. The
// recorded event is published to the broker so the owner gets notified;
// publish failures never fail the payment.
func (h *PaymentHandler) Create(c echo.Context) error {
	p, _ := auth.FromContext(c)
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.LeaseID == 0 || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lease_id and positive amount required"})
	}
	payDate := time.Now().UTC()
	if s := strings.TrimSpace(req.PaymentDate); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_date"})
		}
		payDate = d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lease, err := h.Leases.GetByID(ctx, req.LeaseID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lease not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.OwnsOrIsAdmin(lease.PropertyOwnerID) && lease.TenantID != p.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	pay := model.Payment{
		LeaseID:         lease.ID,
		TenantID:        lease.TenantID,
		TenantUsername:  lease.TenantUsername,
		PropertyID:      lease.PropertyID,
		PropertyAddress: lease.PropertyAddress,
		Amount:          req.Amount,
		PaymentDate:     payDate,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
	}
	if err := h.Payments.Create(ctx, &pay); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record payment failed"})
	}

	event := queue.PaymentRecordedEvent{
		PaymentID:       pay.ID,
		LeaseID:         lease.ID,
		PropertyID:      lease.PropertyID,
		PropertyAddress: lease.PropertyAddress,
		OwnerID:         lease.PropertyOwnerID,
		TenantID:        lease.TenantID,
		TenantUsername:  lease.TenantUsername,
		Amount:          pay.Amount,
		PaymentDate:     payDate.Format("2006-01-02"),
		RecordedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishPaymentRecorded(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, pay)
}

// Export streams the principal's visible payment history as a CSV
// attachment.
func (h *PaymentHandler) Export(c echo.Context) error {
	p, _ := auth.FromContext(c)
	f := repository.PaymentFilter{} // PageSize 0 -> no pagination
	scopedPaymentFilter(p, &f)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	items, _, err := h.Payments.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"ID", "LeaseID", "Tenant", "PropertyAddress", "Amount", "PaymentDate", "PaymentMethod"}
	if err := w.Write(header); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	for _, pay := range items {
		row := []string{
			fmt.Sprintf("%d", pay.ID),
			fmt.Sprintf("%d", pay.LeaseID),
			pay.TenantUsername,
			pay.PropertyAddress,
			fmt.Sprintf("%.2f", pay.Amount),
			pay.PaymentDate.Format("2006-01-02"),
			pay.PaymentMethod,
		}
		if err := w.Write(row); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="payments.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
