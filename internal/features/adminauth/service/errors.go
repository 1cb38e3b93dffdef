package service

import "errors"

// Errors returned by the admin login flows
var (
	ErrNonceNotFound       = errors.New("login nonce not found")
	ErrNonceUsed           = errors.New("login nonce already used")
	ErrNonceExpired        = errors.New("login nonce expired")
	ErrForbidden           = errors.New("not an active staff member")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrDataSource          = errors.New("admin data source unavailable")
	ErrNotConfigured       = errors.New("login method is not configured")
)
