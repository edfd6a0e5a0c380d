package app

import "errors"

// Sentinel kinds for ingestion failures. The HTTP layer maps these to
// response statuses; anything else is a storage failure and surfaces as a
// generic internal error.
var (
	ErrInvalidTimestamp = errors.New("invalid timestampUTC")
	ErrUnknownVessel    = errors.New("unknown or inactive vessel")
	ErrNotStarted       = errors.New("service not started")
	ErrNoStore          = errors.New("no store configured")
)
