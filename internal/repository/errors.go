// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service to distinguish between different failure scenarios
// without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Callers should translate this into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert would violate the no-overlap rule
// for a room, i.e. another non-cancelled reservation already covers part of
// the requested stay. Callers should translate this into a 409 response.
var ErrConflict = errors.New("conflict")
