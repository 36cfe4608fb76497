// Package common defines sentinel errors shared by the repository, service
// and transport layers of droply. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors for malformed or missing input.
	ErrorValidation = errors.New("validation error")

	// ErrorEmptyResult signals a distinguishable "nothing to do" outcome,
	// e.g. emptying a trash that holds no records.
	ErrorEmptyResult = errors.New("empty result")

	// ErrorRemoteStore wraps failures of the blob store. These are logged
	// and never returned to HTTP callers.
	ErrorRemoteStore = errors.New("remote store error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
