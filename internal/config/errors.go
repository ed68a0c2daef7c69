package config

import "errors"

var (
	// ErrInvalidJSON is returned for settings data that is not JSON.
	ErrInvalidJSON = errors.New("config: invalid JSON")

	// ErrOutOfRange is returned for a setting outside its valid range.
	ErrOutOfRange = errors.New("config: value out of range")
)
