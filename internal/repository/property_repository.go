package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// PropertyRepo encapsulates all database queries related to properties.
type PropertyRepo struct{ DB *sql.DB }

func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{DB: db} }

const propertyColumns = `id, owner_id, owner_username, address, city, state, zip_code,
	property_type, bedrooms, bathrooms, square_footage, status, rent_amount,
	is_deleted, created_at, updated_at`

// PropertyFilter defines visibility scoping, filters and pagination for
// property listings. OwnerID restricts rows to one owner (the owner-role
// scope); TenantID restricts rows to properties the tenant holds an active
// lease on. Exactly one of the two is set for non-admin callers.
type PropertyFilter struct {
	OwnerID  uint64
	TenantID uint64
	Status   string
	Keyword  string
	Page     int
	PageSize int
}

// Create inserts a property and reloads the row so the caller receives the
// database-assigned timestamps and defaults.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO properties (owner_id, owner_username, address, city, state, zip_code,
		 property_type, bedrooms, bathrooms, square_footage, status, rent_amount)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.OwnerID, p.OwnerUsername, p.Address, p.City, p.State, p.ZipCode,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.SquareFootage, p.Status, p.RentAmount)
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
	*p = *loaded
	return nil
}

// GetByID fetches a property by id. Soft-deleted rows are invisible.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*model.Property, error) {
	var p model.Property
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE id=? AND is_deleted=0", id).
		Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Address, &p.City, &p.State, &p.ZipCode,
			&p.PropertyType, &p.Bedrooms, &p.Bathrooms, &p.SquareFootage, &p.Status,
			&p.RentAmount, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns a page of properties matching the filter plus the total
// count. The WHERE clause is assembled from the scoping fields so role
// restrictions and user filters compose.
func (r *PropertyRepo) List(ctx context.Context, f PropertyFilter) ([]*model.Property, int, error) {
	where := []string{"p.is_deleted=0"}
	args := []any{}

	if f.OwnerID != 0 {
		where = append(where, "p.owner_id=?")
		args = append(args, f.OwnerID)
	}
	if f.TenantID != 0 {
		where = append(where,
			"p.id IN (SELECT l.property_id FROM leases l WHERE l.tenant_id=? AND l.is_deleted=0)")
		args = append(args, f.TenantID)
	}
	if f.Status != "" {
		where = append(where, "p.status=?")
		args = append(args, f.Status)
	}
	if f.Keyword != "" {
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		where = append(where, "(LOWER(p.address) LIKE ? OR LOWER(p.city) LIKE ? OR LOWER(p.state) LIKE ?)")
		args = append(args, kw, kw, kw)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM properties p WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT p.id, p.owner_id, p.owner_username, p.address, p.city, p.state,
		p.zip_code, p.property_type, p.bedrooms, p.bathrooms, p.square_footage,
		p.status, p.rent_amount, p.is_deleted, p.created_at, p.updated_at
		FROM properties p WHERE ` + cond + ` ORDER BY p.id DESC LIMIT ? OFFSET ?`
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.DB.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Property
	for rows.Next() {
		p := new(model.Property)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Address, &p.City, &p.State,
			&p.ZipCode, &p.PropertyType, &p.Bedrooms, &p.Bathrooms, &p.SquareFootage,
			&p.Status, &p.RentAmount, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites the mutable columns of a property.
func (r *PropertyRepo) Update(ctx context.Context, p *model.Property) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE properties SET address=?, city=?, state=?, zip_code=?, property_type=?,
		 bedrooms=?, bathrooms=?, square_footage=?, status=?, rent_amount=?
		 WHERE id=? AND is_deleted=0`,
		p.Address, p.City, p.State, p.ZipCode, p.PropertyType,
		p.Bedrooms, p.Bathrooms, p.SquareFootage, p.Status, p.RentAmount, p.ID)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}

// BatchUpdateStatus sets the status on a set of properties. When ownerID is
// non-zero the update is additionally scoped to that owner, so an owner
// cannot flip somebody else's rows by guessing ids; the affected count lets
// the handler report how many rows actually changed.
func (r *PropertyRepo) BatchUpdateStatus(ctx context.Context, ids []uint64, status string, ownerID uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := "UPDATE properties SET status=? WHERE is_deleted=0 AND id IN (" + placeholders + ")"
	args := make([]any, 0, len(ids)+2)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}
	if ownerID != 0 {
		q += " AND owner_id=?"
		args = append(args, ownerID)
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDelete marks a property deleted.
func (r *PropertyRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE properties SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}
