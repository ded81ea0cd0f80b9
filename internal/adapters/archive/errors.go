package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	// ErrNoSnapshot means no snapshot exists strictly before the asked date;
	// callers start from an all-zero baseline.
	ErrNoSnapshot = errors.New("no earlier snapshot")

	// ErrInvalidDate marks a date key that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid snapshot date")

	// ErrCorruptSnapshot marks a stored snapshot that no longer decodes.
	ErrCorruptSnapshot = errors.New("corrupt snapshot record")
)
