package results

import "errors"

// Sentinel kinds for results-feed errors.
var (
	// ErrUnavailable marks transport failures and non-2xx responses; callers
	// degrade the cycle to empty results instead of aborting.
	ErrUnavailable = errors.New("results feed unavailable")

	// ErrBadPayload marks a payload that could not be decoded at all.
	ErrBadPayload = errors.New("malformed results payload")
)
