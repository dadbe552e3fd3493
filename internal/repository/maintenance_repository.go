package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// MaintenanceRepo encapsulates all database queries related to maintenance
// requests.
type MaintenanceRepo struct{ DB *sql.DB }

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{DB: db} }

const maintenanceSelect = `SELECT m.id, m.property_id, p.owner_id, p.address, m.tenant_id,
	u.username, m.title, m.description, m.status, m.is_deleted, m.created_at, m.updated_at
	FROM maintenance_requests m
	JOIN properties p ON p.id = m.property_id
	JOIN users u ON u.id = m.tenant_id`

// MaintenanceFilter defines scoping and pagination for request listings.
type MaintenanceFilter struct {
	OwnerID  uint64
	TenantID uint64
	Status   string
	Page     int
	PageSize int
}

// Create files a request and reloads it with its joined context.
func (r *MaintenanceRepo) Create(ctx context.Context, m *model.MaintenanceRequest) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO maintenance_requests (property_id, tenant_id, title, description, status) VALUES (?,?,?,?,?)",
		m.PropertyID, m.TenantID, m.Title, m.Description, m.Status)
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
	*m = *loaded
	return nil
}

// GetByID fetches a request with property and tenant context joined in.
func (r *MaintenanceRepo) GetByID(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	var m model.MaintenanceRequest
	err := r.DB.QueryRowContext(ctx, maintenanceSelect+" WHERE m.id=? AND m.is_deleted=0", id).
		Scan(&m.ID, &m.PropertyID, &m.PropertyOwnerID, &m.PropertyAddress, &m.TenantID,
			&m.TenantUsername, &m.Title, &m.Description, &m.Status, &m.IsDeleted,
			&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns a page of requests matching the filter plus the total count.
func (r *MaintenanceRepo) List(ctx context.Context, f MaintenanceFilter) ([]*model.MaintenanceRequest, int, error) {
	where := []string{"m.is_deleted=0"}
	args := []any{}

	if f.OwnerID != 0 {
		where = append(where, "p.owner_id=?")
		args = append(args, f.OwnerID)
	}
	if f.TenantID != 0 {
		where = append(where, "m.tenant_id=?")
		args = append(args, f.TenantID)
	}
	if f.Status != "" {
		where = append(where, "m.status=?")
		args = append(args, f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	countSQL := `SELECT COUNT(*) FROM maintenance_requests m JOIN properties p ON p.id = m.property_id WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		maintenanceSelect+" WHERE "+cond+" ORDER BY m.id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.MaintenanceRequest
	for rows.Next() {
		m := new(model.MaintenanceRequest)
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.PropertyOwnerID, &m.PropertyAddress,
			&m.TenantID, &m.TenantUsername, &m.Title, &m.Description, &m.Status,
			&m.IsDeleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus transitions a request to the given status.
func (r *MaintenanceRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE maintenance_requests SET status=? WHERE id=? AND is_deleted=0", status, id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}

// SoftDelete marks a request deleted.
func (r *MaintenanceRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE maintenance_requests SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}
