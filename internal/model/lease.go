package model

import "time"

// Lease statuses.
const (
	LeaseActive     = "ACTIVE"
	LeaseEnded      = "ENDED"
	LeaseTerminated = "TERMINATED"
)

// Lease ties a tenant to a property for a date range in the `leases` table.
// PropertyOwnerID is carried on every loaded lease (joined from the
// property) because owner scoping of leases, payments and maintenance
// requests all hinge on it.
type Lease struct {
	ID              uint64    // leases.id
	PropertyID      uint64    // leases.property_id -> properties.id
	PropertyAddress string    // joined from properties.address
	PropertyOwnerID uint64    // joined from properties.owner_id
	TenantID        uint64    // leases.tenant_id -> users.id
	TenantUsername  string    // joined from users.username
	StartDate       time.Time // leases.start_date
	EndDate         time.Time // leases.end_date
	RentAmount      float64   // leases.rent_amount
	Status          string    // leases.status
	IsDeleted       bool      // leases.is_deleted
	CreatedAt       time.Time // leases.created_at
	UpdatedAt       time.Time // leases.updated_at
}

// ValidLeaseStatus reports whether s is one of the known statuses.
func ValidLeaseStatus(s string) bool {
	switch s {
	case LeaseActive, LeaseEnded, LeaseTerminated:
		return true
	}
	return false
}
