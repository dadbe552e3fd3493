package model

import "time"

// Payment records a rent payment against a lease in the `payments` table.
// Tenant and property context is denormalized at insert time so payment
// history survives later lease edits unchanged.
type Payment struct {
	ID              uint64    // payments.id
	LeaseID         uint64    // payments.lease_id -> leases.id
	TenantID        uint64    // payments.tenant_id (denormalized)
	TenantUsername  string    // payments.tenant_username (denormalized)
	PropertyID      uint64    // payments.property_id (denormalized)
	PropertyOwnerID uint64    // joined from properties.owner_id
	PropertyAddress string    // payments.property_address (denormalized)
	Amount          float64   // payments.amount
	PaymentDate     time.Time // payments.payment_date
	PaymentMethod   string    // payments.payment_method
	CreatedAt       time.Time // payments.created_at
}
