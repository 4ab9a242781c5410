package config

import "errors"

var (
	// ErrInvalidConfig marks a setting that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, env or decode failure while loading.
	ErrLoadConfig = errors.New("load config failed")
)
