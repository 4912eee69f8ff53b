package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError means no usable response arrived: dial failure, reset,
// cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Message is the server-supplied text,
// empty when the body carried none.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body does not have the endpoint's shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message returns the server-supplied message carried by err, or fallback.
func Message(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && strings.TrimSpace(statusErr.Message) != "" {
		return statusErr.Message
	}
	return fallback
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		decodeErr    *DecodeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "error"
	}
}
