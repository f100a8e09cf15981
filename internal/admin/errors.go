package admin

import "errors"

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfRoleChange rejects an admin changing their own role, regardless
	// of the requested value.
	ErrSelfRoleChange = errors.New("you cannot change your own role")
	ErrInvalidRole    = errors.New("invalid role")
)
