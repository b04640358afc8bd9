package auth

import "errors"

// Credential and session failures. The HTTP boundary collapses all of these
// into one generic unauthorized response; the distinctions exist for logging,
// metrics and tests.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountInactive    = errors.New("auth: account inactive")

	ErrExpiredToken   = errors.New("auth: access token expired")
	ErrMalformedToken = errors.New("auth: malformed access token")
	ErrClockSkew      = errors.New("auth: access token issued in the future")

	ErrUnknownToken = errors.New("auth: unknown refresh token")
	ErrTokenExpired = errors.New("auth: refresh token expired")
	ErrTokenRevoked = errors.New("auth: refresh token revoked")

	ErrInvalidInput  = errors.New("auth: invalid input")
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
)
