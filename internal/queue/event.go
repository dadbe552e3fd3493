// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into notification rows.
package queue

// Queue names. Both queues are declared durable by publisher and consumer.
const (
	PaymentQueueName     = "payment.recorded"
	MaintenanceQueueName = "maintenance.requested"
)

// PaymentRecordedEvent is published when a rent payment is recorded. It
// carries enough denormalized context for a consumer to notify the property
// owner without querying the primary database.
type PaymentRecordedEvent struct {
	PaymentID       uint64  `json:"payment_id"`
	LeaseID         uint64  `json:"lease_id"`
	PropertyID      uint64  `json:"property_id"`
	PropertyAddress string  `json:"property_address"`
	OwnerID         uint64  `json:"owner_id"`
	TenantID        uint64  `json:"tenant_id"`
	TenantUsername  string  `json:"tenant_username"`
	Amount          float64 `json:"amount"`
	PaymentDate     string  `json:"payment_date"`
	RecordedAt      string  `json:"recorded_at"`
}

// MaintenanceRequestedEvent is published when a tenant files a maintenance
// request, so the property owner can be notified out of band.
type MaintenanceRequestedEvent struct {
	RequestID       uint64 `json:"request_id"`
	PropertyID      uint64 `json:"property_id"`
	PropertyAddress string `json:"property_address"`
	OwnerID         uint64 `json:"owner_id"`
	TenantID        uint64 `json:"tenant_id"`
	TenantUsername  string `json:"tenant_username"`
	Title           string `json:"title"`
	CreatedAt       string `json:"created_at"`
}
