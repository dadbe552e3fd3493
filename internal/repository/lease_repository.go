package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// LeaseRepo encapsulates all database queries related to leases. Every
// loaded lease carries the property's owner_id so handlers can apply the
// owner scope without a second lookup.
type LeaseRepo struct{ DB *sql.DB }

func NewLeaseRepo(db *sql.DB) *LeaseRepo { return &LeaseRepo{DB: db} }

const leaseSelect = `SELECT l.id, l.property_id, p.address, p.owner_id, l.tenant_id, u.username,
	l.start_date, l.end_date, l.rent_amount, l.status, l.is_deleted, l.created_at, l.updated_at
	FROM leases l
	JOIN properties p ON p.id = l.property_id
	JOIN users u ON u.id = l.tenant_id`

// LeaseFilter defines scoping and pagination for lease listings.
type LeaseFilter struct {
	OwnerID  uint64 // restrict to leases on this owner's properties
	TenantID uint64 // restrict to this tenant's leases
	Status   string
	Page     int
	PageSize int
}

// Create inserts a lease and reloads it with its joined context.
func (r *LeaseRepo) Create(ctx context.Context, l *model.Lease) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO leases (property_id, tenant_id, start_date, end_date, rent_amount, status) VALUES (?,?,?,?,?,?)",
		l.PropertyID, l.TenantID, l.StartDate, l.EndDate, l.RentAmount, l.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	loaded, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*l = *loaded
	return nil
}

// GetByID fetches a lease with property and tenant context joined in.
func (r *LeaseRepo) GetByID(ctx context.Context, id uint64) (*model.Lease, error) {
	var l model.Lease
	err := r.DB.QueryRowContext(ctx, leaseSelect+" WHERE l.id=? AND l.is_deleted=0", id).
		Scan(&l.ID, &l.PropertyID, &l.PropertyAddress, &l.PropertyOwnerID, &l.TenantID,
			&l.TenantUsername, &l.StartDate, &l.EndDate, &l.RentAmount, &l.Status,
			&l.IsDeleted, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns a page of leases matching the filter plus the total count.
func (r *LeaseRepo) List(ctx context.Context, f LeaseFilter) ([]*model.Lease, int, error) {
	where := []string{"l.is_deleted=0"}
	args := []any{}

	if f.OwnerID != 0 {
		where = append(where, "p.owner_id=?")
		args = append(args, f.OwnerID)
	}
	if f.TenantID != 0 {
		where = append(where, "l.tenant_id=?")
		args = append(args, f.TenantID)
	}
	if f.Status != "" {
		where = append(where, "l.status=?")
		args = append(args, f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	countSQL := `SELECT COUNT(*) FROM leases l JOIN properties p ON p.id = l.property_id WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		leaseSelect+" WHERE "+cond+" ORDER BY l.id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Lease
	for rows.Next() {
		l := new(model.Lease)
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.PropertyAddress, &l.PropertyOwnerID,
			&l.TenantID, &l.TenantUsername, &l.StartDate, &l.EndDate, &l.RentAmount,
			&l.Status, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// HasActiveLease reports whether the property already carries an active
// lease overlapping today. Used to reject double-leasing.
func (r *LeaseRepo) HasActiveLease(ctx context.Context, propertyID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leases WHERE property_id=? AND status=? AND is_deleted=0",
		propertyID, model.LeaseActive).Scan(&n)
	return n > 0, err
}

// ActiveLeaseForTenant reports whether the tenant holds an active lease on
// the property. Maintenance requests are gated on this.
func (r *LeaseRepo) ActiveLeaseForTenant(ctx context.Context, tenantID, propertyID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leases WHERE tenant_id=? AND property_id=? AND status=? AND is_deleted=0",
		tenantID, propertyID, model.LeaseActive).Scan(&n)
	return n > 0, err
}

// UpdateStatus transitions a lease to the given status.
func (r *LeaseRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE leases SET status=? WHERE id=? AND is_deleted=0", status, id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}

// SoftDelete marks a lease deleted.
func (r *LeaseRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE leases SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}
