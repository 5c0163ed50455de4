package domain

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("admin access required")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrSignupRejected        = errors.New("signup rejected")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrProjectNotFound       = errors.New("project not found")
	ErrDeveloperNotFound     = errors.New("developer not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrDeveloperUnavailable  = errors.New("developer is not available")
	ErrDeveloperTypeMismatch = errors.New("developer type does not match project")
)
