// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrEmailExists signals that a registration conflicts with
// an existing account and should surface as HTTP 409.
//
// There is deliberately no "forbidden" sentinel here: task lookups
// always scope on owner_id in the WHERE clause, so a task owned by
// someone else produces sql.ErrNoRows exactly like a task that does
// not exist. Handlers map both to HTTP 404, which keeps other users'
// tasks invisible.
package repository

import "errors"

// ErrEmailExists is returned when creating a user whose email is
// already registered. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when creating a user whose username
// is already taken. Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")
