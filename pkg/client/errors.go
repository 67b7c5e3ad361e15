package client

import (
	"fmt"
	"net/http"
)

// HTTPError is implemented by failures that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError reports a response outside the 2xx range. Message holds the
// server supplied "error" field when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// TransportError reports a request that could not be sent or whose response
// could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "network request failed"
	}
	return "network request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not valid JSON or does not
// match the endpoint contract.
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "invalid JSON response"
	}
	return "invalid JSON response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
