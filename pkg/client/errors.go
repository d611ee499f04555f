package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential is returned by Stream when neither the request nor the
// client carries an API key. No request is sent.
var ErrMissingCredential = errors.New("missing API key")

// RequestError is returned by Stream when the endpoint answers with a non-2xx
// status. Body holds the full response text.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status indicates a server side or throttling
// failure. Only temporary failures count against the circuit breaker.
func (e *RequestError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
