package model

import "time"

// Property statuses.
const (
	PropertyAvailable   = "AVAILABLE"
	PropertyRented      = "RENTED"
	PropertyMaintenance = "MAINTENANCE"
	PropertyUnavailable = "UNAVAILABLE"
)

// Property represents a rentable unit in the `properties` table. Each
// property belongs to exactly one owner (users.id). OwnerUsername is
// denormalized alongside the foreign key so listings do not need a join.
type Property struct {
	ID            uint64    // properties.id
	OwnerID       uint64    // properties.owner_id -> users.id
	OwnerUsername string    // properties.owner_username (denormalized)
	Address       string    // properties.address
	City          string    // properties.city
	State         string    // properties.state
	ZipCode       string    // properties.zip_code
	PropertyType  string    // properties.property_type (APARTMENT, HOUSE, ...)
	Bedrooms      int       // properties.bedrooms
	Bathrooms     float64   // properties.bathrooms
	SquareFootage int       // properties.square_footage
	Status        string    // properties.status
	RentAmount    float64   // properties.rent_amount
	IsDeleted     bool      // properties.is_deleted
	CreatedAt     time.Time // properties.created_at
	UpdatedAt     time.Time // properties.updated_at
}

// ValidPropertyStatus reports whether s is one of the known statuses.
func ValidPropertyStatus(s string) bool {
	switch s {
	case PropertyAvailable, PropertyRented, PropertyMaintenance, PropertyUnavailable:
		return true
	}
	return false
}
