// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of devconnector. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Credential errors.
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrHashingFailure     = errors.New("password hashing failure")

	// Profile errors.
	ErrHandleTaken     = errors.New("handle already in use")
	ErrProfileNotFound = errors.New("profile not found")

	// Post errors.
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Validation errors; see ValidationError for the field-keyed form.
	ErrValidation = errors.New("validation failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
