package auth

import "errors"

// The error taxonomy the request surface distinguishes. Handlers map these
// to HTTP statuses; nothing below the transport layer knows about HTTP.
var (
	// ErrForbidden means the caller is authenticated but the role or
	// tenancy check failed. Unauthenticated outcomes never reach this
	// package; the auth middleware rejects them before any policy check.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means the input is malformed, e.g. an unknown role.
	ErrValidation = errors.New("validation failed")
)
