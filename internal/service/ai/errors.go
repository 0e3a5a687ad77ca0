package ai

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// StatusError is a backend failure that carries an HTTP status code.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient server-side failure
// (HTTP 5xx) worth another attempt.
func IsRetryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 500 && se.StatusCode <= 599
}

// wrapError converts SDK API errors into a StatusError.
func wrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var oe *openai.Error
	if errors.As(err, &oe) {
		return &StatusError{Provider: provider, StatusCode: oe.StatusCode, Err: err}
	}
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		return &StatusError{Provider: provider, StatusCode: ae.StatusCode, Err: err}
	}
	return err
}
