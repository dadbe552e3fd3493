package model

import "time"

// Role names seeded at bootstrap. The tier model is deliberately flat:
// a principal either administers everything, owns properties, or rents one.
const (
	RoleAdmin  = "ADMIN"
	RoleOwner  = "OWNER"
	RoleTenant = "TENANT"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. Roles are kept in a separate
// `roles` table joined through `user_roles`; the Roles slice here is
// populated explicitly by the repository, never lazily. Accounts are soft
// deleted: IsDeleted flips to true and the row stays for audit purposes.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name (case-sensitive).
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – optional given name.
//	LastName     – optional family name.
//	PhoneNumber  – optional contact number.
//	Roles        – names of the roles assigned to the user.
//	IsDeleted    – soft-delete flag; deleted users cannot authenticate.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	PhoneNumber  string    // users.phone_number
	Roles        []string  // joined from roles via user_roles
	IsDeleted    bool      // users.is_deleted
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role represents a row in the `roles` table. It maps a small integer ID to
// a role name. Rows are created once at bootstrap and never mutated.
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name (ADMIN, OWNER, TENANT)
}

// RefreshToken models the single row in `refresh_tokens` a user may hold.
// The table is keyed by user_id, which is what enforces the one-live-token
// invariant at the storage layer: a rotation is an upsert, never a second
// row. Only the SHA-256 hash of the opaque value is persisted.
//
// Fields:
//
//	UserID    – owner of the token and primary key of the table.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	CreatedAt – timestamp of creation (last rotation).
type RefreshToken struct {
	UserID    uint64    // refresh_tokens.user_id (primary key)
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
