// Package repository defines error types that are reused across the
// persistence layer.  These sentinel values allow higher layers such as
// the session manager to distinguish between different failure scenarios
// with errors.Is without inspecting driver-specific errors.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the lookup. The session
// manager translates it into a domain NotFound or Unauthorized error
// depending on the operation.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when an insert collides with the unique
// username or email index. Handlers should translate this into an HTTP
// 409 response.
var ErrUserExists = errors.New("username or email already exists")
