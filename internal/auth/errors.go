package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrBadCredentials is returned for a missing user and for a password
	// mismatch alike. Callers must not be able to tell the two apart.
	ErrBadCredentials = errors.New("auth: bad credentials")

	ErrTokenExpired     = errors.New("auth: token expired")
	ErrTokenRevoked     = errors.New("auth: token revoked")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrSignatureInvalid = errors.New("auth: token signature invalid")

	// ErrProviderProfile marks a provider response that is missing the
	// fields needed to resolve a principal (subject, email).
	ErrProviderProfile = errors.New("auth: provider profile invalid")
)
