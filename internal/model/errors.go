package model

import "errors"

// Common errors used across the application
var (
	// Infrastructure errors; always fail closed on the intake path
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrIdentityResolution = errors.New("identity resolution failed")

	// Lookup errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrGuestMappingNotFound = errors.New("guest mapping not found")
)
