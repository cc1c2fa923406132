// Package core provides the error taxonomy and shared wire types for the gateway.
package core

import (
	"fmt"
	"net/http"
)

// ErrorType classifies a request failure.
type ErrorType string

const (
	// ErrorTypeBadRequest indicates an unparseable body or a missing model field (400)
	ErrorTypeBadRequest ErrorType = "bad_request"
	// ErrorTypeNotFound indicates an unknown model group (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeForbidden indicates a disabled model group (403)
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeUnavailable indicates a group with no usable endpoints (503)
	ErrorTypeUnavailable ErrorType = "unavailable"
	// ErrorTypeUpstream indicates a non-2xx response from a backend endpoint (500)
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeConversion indicates an import/export failure (500)
	ErrorTypeConversion ErrorType = "conversion_error"
	// ErrorTypeStreamingUnsupported indicates the transport cannot flush incrementally (500)
	ErrorTypeStreamingUnsupported ErrorType = "streaming_unsupported"
)

// GatewayError is the base error type for all request-boundary failures.
// All of these are recovered at the request boundary and surfaced to the
// caller as a JSON error body; none crash the process.
type GatewayError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	// Err is the original error for debugging (not exposed to clients)
	Err error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status code for this error.
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeBadRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON returns the client-visible error body: {"error": "<message>"}.
func (e *GatewayError) ToJSON() map[string]any {
	return map[string]any{"error": e.Message}
}

// NewBadRequestError creates an error for unparseable bodies or a missing model field.
func NewBadRequestError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeBadRequest, Message: message, StatusCode: http.StatusBadRequest, Err: err}
}

// NewNotFoundError creates an error for an unknown model group.
func NewNotFoundError(message string) *GatewayError {
	return &GatewayError{Type: ErrorTypeNotFound, Message: message, StatusCode: http.StatusNotFound}
}

// NewForbiddenError creates an error for a disabled model group.
func NewForbiddenError(message string) *GatewayError {
	return &GatewayError{Type: ErrorTypeForbidden, Message: message, StatusCode: http.StatusForbidden}
}

// NewUnavailableError creates an error for a group with zero usable endpoints.
func NewUnavailableError(message string) *GatewayError {
	return &GatewayError{Type: ErrorTypeUnavailable, Message: message, StatusCode: http.StatusServiceUnavailable}
}

// NewUpstreamError creates an error for a non-2xx backend response.
// The upstream body is echoed verbatim in the message for diagnosis.
func NewUpstreamError(statusCode int, body []byte) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUpstream,
		Message:    fmt.Sprintf("upstream returned status %d: %s", statusCode, string(body)),
		StatusCode: http.StatusInternalServerError,
	}
}

// NewConversionError creates an error for an import/export failure.
func NewConversionError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeConversion, Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}

// NewStreamingUnsupportedError creates an error for transports that cannot flush incrementally.
func NewStreamingUnsupportedError() *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeStreamingUnsupported,
		Message:    "streaming is not supported by this transport",
		StatusCode: http.StatusInternalServerError,
	}
}
