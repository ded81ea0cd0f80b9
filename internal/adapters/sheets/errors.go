package sheets

import "errors"

// Sentinel kinds for sheet access errors.
var (
	ErrService = errors.New("sheets service init failed")
	ErrFetch   = errors.New("sheet fetch failed")
)
