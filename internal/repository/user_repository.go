package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// UserRepo encapsulates all queries against the users, roles and user_roles
// tables. Role membership is loaded with an explicit join; no row ever
// carries live object references.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, first_name, last_name, phone_number, is_deleted, created_at, updated_at"

// EnsureRoles seeds the three role rows at bootstrap. The insert is
// idempotent so restarts are harmless.
func (r *UserRepo) EnsureRoles(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO roles (name) VALUES (?),(?),(?)",
		model.RoleAdmin, model.RoleOwner, model.RoleTenant)
	return err
}

// Create inserts a user with its role assignments inside one transaction
// and returns the new ID. Duplicate username/email collisions surface as
// ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User, passwordHash string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, passwordHash, u.FirstName, u.LastName, u.PhoneNumber)
	if err != nil {
		return 0, dupKeyError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, role := range u.Roles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name=?",
			id, role); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an active (non-deleted) user by exact username
// match and populates its roles. Returns ErrNotFound when no such user
// exists, which callers on the login path must fold into the same generic
// failure as a bad password.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getWhere(ctx, "username=? AND is_deleted=0", username)
}

// GetByID fetches an active user by id with roles populated.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id=? AND is_deleted=0", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.PhoneNumber, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	roles, err := r.loadRoles(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Roles = roles
	return u, nil
}

// loadRoles returns the role names assigned to a user, ordered by role id.
func (r *UserRepo) loadRoles(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// List returns a page of active users plus the total count. Roles are
// loaded per row; user administration is an admin-only, low-volume path.
func (r *UserRepo) List(ctx context.Context, page, size int) ([]model.User, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_deleted=0").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_deleted=0 ORDER BY id LIMIT ? OFFSET ?",
		size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
			&u.LastName, &u.PhoneNumber, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		roles, err := r.loadRoles(ctx, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Roles = roles
	}
	return out, total, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, email, firstName, lastName, phoneNumber string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, first_name=?, last_name=?, phone_number=? WHERE id=? AND is_deleted=0",
		email, firstName, lastName, phoneNumber, id)
	if err != nil {
		return dupKeyError(err)
	}
	return noRowsAsNotFound(res)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=? AND is_deleted=0", passwordHash, id)
	if err != nil {
		return err
	}
	return noRowsAsNotFound(res)
}

// SoftDelete marks the user deleted and removes the refresh token in the
// same transaction, so a deleted account cannot mint new access tokens.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET is_deleted=1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	if err := noRowsAsNotFound(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// dupKeyError maps MySQL duplicate-key failures (error 1062) onto the
// registration sentinels, inspecting the key name in the message.
func dupKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}

// noRowsAsNotFound converts a zero-row update into ErrNotFound.
func noRowsAsNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
