package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// PaymentRepo encapsulates all database queries related to payments.
// Payment rows are write-once: recorded, listed, exported, never edited.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentSelect = `SELECT pay.id, pay.lease_id, pay.tenant_id, pay.tenant_username,
	pay.property_id, prop.owner_id, pay.property_address, pay.amount, pay.payment_date,
	pay.payment_method, pay.created_at
	FROM payments pay
	JOIN properties prop ON prop.id = pay.property_id`

// PaymentFilter defines scoping and pagination for payment listings. A zero
// PageSize disables pagination, which the CSV export relies on.
type PaymentFilter struct {
	OwnerID  uint64
	TenantID uint64
	LeaseID  uint64
	Page     int
	PageSize int
}

// Create records a payment with its denormalized lease context.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payments (lease_id, tenant_id, tenant_username, property_id,
		 property_address, amount, payment_date, payment_method)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.LeaseID, p.TenantID, p.TenantUsername, p.PropertyID,
		p.PropertyAddress, p.Amount, p.PaymentDate, p.PaymentMethod)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// List returns payments matching the filter, newest first, plus the total
// count.
func (r *PaymentRepo) List(ctx context.Context, f PaymentFilter) ([]*model.Payment, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if f.OwnerID != 0 {
		where = append(where, "prop.owner_id=?")
		args = append(args, f.OwnerID)
	}
	if f.TenantID != 0 {
		where = append(where, "pay.tenant_id=?")
		args = append(args, f.TenantID)
	}
	if f.LeaseID != 0 {
		where = append(where, "pay.lease_id=?")
		args = append(args, f.LeaseID)
	}
	cond := strings.Join(where, " AND ")

	var total int
	countSQL := `SELECT COUNT(*) FROM payments pay JOIN properties prop ON prop.id = pay.property_id WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := paymentSelect + " WHERE " + cond + " ORDER BY pay.payment_date DESC, pay.id DESC"
	if f.PageSize > 0 {
		dataSQL += " LIMIT ? OFFSET ?"
		args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	}

	rows, err := r.DB.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := new(model.Payment)
		if err := rows.Scan(&p.ID, &p.LeaseID, &p.TenantID, &p.TenantUsername, &p.PropertyID,
			&p.PropertyOwnerID, &p.PropertyAddress, &p.Amount, &p.PaymentDate,
			&p.PaymentMethod, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
