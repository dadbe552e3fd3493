// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values reused across repositories.
// These sentinels let handlers distinguish failure scenarios without
// inspecting driver errors: ErrNotFound maps to 404 and the uniqueness
// errors to 409 at registration.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is soft
// deleted. Repositories also return it for expired refresh tokens so the
// caller cannot tell a missing credential from a dead one.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists and ErrEmailExists signal registration collisions on
// the corresponding unique columns.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)
