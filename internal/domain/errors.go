package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

// Token verification failures.
var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrRevoked          = errors.New("token revoked")
)
