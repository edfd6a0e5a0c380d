package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotConfigured = errors.New("storage is not configured")
	ErrInvalidPath   = errors.New("storage path is required")
)
