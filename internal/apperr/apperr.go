// Package apperr defines the error kinds surfaced to users of recode.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigError reports missing or invalid configuration.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "configuration: " + e.Msg
	}
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Msg)
}

// TransportError reports a failed call to the completion service.
// Body holds the raw response body, if one was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := "completion request failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Body != "" {
		msg += "\nResponse: " + e.Body
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports input bytes that are not valid UTF-8 text.
type DecodeError struct {
	Name   string
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s is not valid UTF-8 text (invalid byte near offset %d)", e.Name, e.Offset)
}

// ValidationError reports a rejected user input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validation is a shorthand for building a ValidationError.
func Validation(field, format string, a ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, a...)}
}

// HTTPStatus maps an error to the status code an HTTP handler should return.
func HTTPStatus(err error) int {
	var (
		cfgErr       *ConfigError
		transportErr *TransportError
		decodeErr    *DecodeError
		validErr     *ValidationError
	)
	switch {
	case errors.As(err, &validErr), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
