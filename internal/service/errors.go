package service

import "errors"

var (
	ErrInvalid     = errors.New("invalid")
	ErrFetchFailed = errors.New("fetch failed")

	// ErrSourceUnavailable is returned when the source feed cannot be
	// fetched or parsed. No pipeline state has been changed.
	ErrSourceUnavailable = errors.New("source feed unavailable")

	// ErrNotLoaded is returned by pipeline steps that need a loaded source.
	ErrNotLoaded = errors.New("source not loaded, call Load first")
)
