// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to HTTP responses without string matching.
package repository

import "errors"

// ErrNotFound is returned when an operation targets a record that does
// not exist, e.g. updating the role of an unknown subject id. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would violate the unique
// email constraint. Handlers should translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")
