package model

import "time"

// Maintenance request statuses.
const (
	MaintenanceOpen       = "OPEN"
	MaintenanceInProgress = "IN_PROGRESS"
	MaintenanceResolved   = "RESOLVED"
)

// MaintenanceRequest is a tenant-filed issue against a property, stored in
// the `maintenance_requests` table.
type MaintenanceRequest struct {
	ID              uint64    // maintenance_requests.id
	PropertyID      uint64    // maintenance_requests.property_id
	PropertyOwnerID uint64    // joined from properties.owner_id
	PropertyAddress string    // joined from properties.address
	TenantID        uint64    // maintenance_requests.tenant_id
	TenantUsername  string    // joined from users.username
	Title           string    // maintenance_requests.title
	Description     string    // maintenance_requests.description
	Status          string    // maintenance_requests.status
	IsDeleted       bool      // maintenance_requests.is_deleted
	CreatedAt       time.Time // maintenance_requests.created_at
	UpdatedAt       time.Time // maintenance_requests.updated_at
}

// ValidMaintenanceStatus reports whether s is one of the known statuses.
func ValidMaintenanceStatus(s string) bool {
	switch s {
	case MaintenanceOpen, MaintenanceInProgress, MaintenanceResolved:
		return true
	}
	return false
}
