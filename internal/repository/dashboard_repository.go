package repository

import (
	"context"
	"database/sql"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// DashboardStats aggregates the role-scoped counters shown on the landing
// page. Which rows contribute depends on the scope the handler passes in.
type DashboardStats struct {
	Properties        int            `json:"properties"`
	PropertiesByState map[string]int `json:"properties_by_status"`
	ActiveLeases      int            `json:"active_leases"`
	OpenMaintenance   int            `json:"open_maintenance"`
	PaymentsTotal     float64        `json:"payments_total"`
}

// StatsRepo runs the aggregate queries behind the dashboard endpoint.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// Stats computes the dashboard counters. ownerID scopes rows to one owner's
// properties, tenantID to one tenant's leases; both zero means the admin
// view over everything. At most one of the two is non-zero.
func (r *StatsRepo) Stats(ctx context.Context, ownerID, tenantID uint64) (*DashboardStats, error) {
	out := &DashboardStats{PropertiesByState: map[string]int{}}

	propWhere, propArgs := "is_deleted=0", []any{}
	if ownerID != 0 {
		propWhere += " AND owner_id=?"
		propArgs = append(propArgs, ownerID)
	}
	if tenantID != 0 {
		propWhere += " AND id IN (SELECT property_id FROM leases WHERE tenant_id=? AND is_deleted=0)"
		propArgs = append(propArgs, tenantID)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM properties WHERE "+propWhere+" GROUP BY status", propArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out.PropertiesByState[status] = n
		out.Properties += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	leaseWhere, leaseArgs := "l.is_deleted=0 AND l.status=?", []any{model.LeaseActive}
	if ownerID != 0 {
		leaseWhere += " AND p.owner_id=?"
		leaseArgs = append(leaseArgs, ownerID)
	}
	if tenantID != 0 {
		leaseWhere += " AND l.tenant_id=?"
		leaseArgs = append(leaseArgs, tenantID)
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leases l JOIN properties p ON p.id=l.property_id WHERE "+leaseWhere,
		leaseArgs...).Scan(&out.ActiveLeases); err != nil {
		return nil, err
	}

	maintWhere, maintArgs := "m.is_deleted=0 AND m.status=?", []any{model.MaintenanceOpen}
	if ownerID != 0 {
		maintWhere += " AND p.owner_id=?"
		maintArgs = append(maintArgs, ownerID)
	}
	if tenantID != 0 {
		maintWhere += " AND m.tenant_id=?"
		maintArgs = append(maintArgs, tenantID)
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM maintenance_requests m JOIN properties p ON p.id=m.property_id WHERE "+maintWhere,
		maintArgs...).Scan(&out.OpenMaintenance); err != nil {
		return nil, err
	}

	payWhere, payArgs := "1=1", []any{}
	if ownerID != 0 {
		payWhere += " AND prop.owner_id=?"
		payArgs = append(payArgs, ownerID)
	}
	if tenantID != 0 {
		payWhere += " AND pay.tenant_id=?"
		payArgs = append(payArgs, tenantID)
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(pay.amount),0) FROM payments pay JOIN properties prop ON prop.id=pay.property_id WHERE "+payWhere,
		payArgs...).Scan(&out.PaymentsTotal); err != nil {
		return nil, err
	}

	return out, nil
}
