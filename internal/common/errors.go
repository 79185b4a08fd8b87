// Package common defines shared constants and sentinel errors used across
// the portfolio server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorInvalidCredentials is the single answer to a failed login, whether
	// the email is unknown or the password did not match.
	ErrorInvalidCredentials = errors.New("incorrect email or password")

	// ErrorConfiguration marks operator-side faults: a stored credential that
	// is not a recognized hash, a missing signing secret, and the like.
	ErrorConfiguration = errors.New("configuration error")

	// ErrorUpstreamStorage is returned when the object storage rejects or
	// fails an upload.
	ErrorUpstreamStorage = errors.New("upstream storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionRevoked = errors.New("session revoked")
)
