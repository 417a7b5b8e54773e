package model

import "errors"

// Sentinel kinds shared by the stats and commentary components. These allow
// errors.Is from callers.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrDatasetEmpty     = errors.New("dataset is empty")
	ErrMissingField     = errors.New("missing field")
	ErrMissingParameter = errors.New("missing parameter")
)
