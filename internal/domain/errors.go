// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated indicates the request carries no valid user identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrPermissionDenied indicates the permission gate refused the operation.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists indicates a unique constraint was violated.
var ErrAlreadyExists = errors.New("already exists")

// ErrTransport indicates an HTTP request to an external service failed
// before a response was received (timeout, DNS, connection reset).
var ErrTransport = errors.New("transport failure")

// ErrInternal indicates an unexpected failure whose details must not leak
// to API consumers.
var ErrInternal = errors.New("internal error")

// ProviderError is returned when GitHub accepted the connection but
// rejected the call. Message carries the provider's own error text, or the
// raw response body when the provider did not return a structured error.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected: %s", e.Message)
}
