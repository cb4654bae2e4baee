package registry

import "errors"

var (
	// ErrAppNotFound is returned when no application owns the queried key.
	ErrAppNotFound = errors.New("application not found")

	// ErrQueryFailed wraps backend failures during lookup.
	ErrQueryFailed = errors.New("application lookup failed")

	// ErrInvalidWebhooks is returned when a stored webhooks column cannot
	// be decoded.
	ErrInvalidWebhooks = errors.New("failed to decode stored webhooks")
)
