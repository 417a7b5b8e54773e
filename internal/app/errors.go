package service

import "errors"

// Sentinel kinds for service wiring errors.
var (
	ErrNoStore           = errors.New("service has no dataset store")
	ErrReloadUnsupported = errors.New("store does not support reload")
)
