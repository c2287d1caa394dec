package goecharger

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeInvalidArgument indicates a setter was called with a value
	// outside its allowed domain; raised before any network I/O
	ErrTypeInvalidArgument ErrorType = iota
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the charger refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a hostname resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates an HTTP-level error (non-2xx status code)
	ErrTypeHTTP
	// ErrTypeAPIDisabled indicates the device answered 404, meaning the
	// local HTTP API v2 is not enabled in the charger settings
	ErrTypeAPIDisabled
	// ErrTypeDecode indicates a malformed or incomplete response body
	ErrTypeDecode
	// ErrTypeRejected indicates the charger answered a set request but did
	// not acknowledge the key
	ErrTypeRejected
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidArgument:
		return "Invalid Argument"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeAPIDisabled:
		return "API Disabled"
	case ErrTypeDecode:
		return "Decode Error"
	case ErrTypeRejected:
		return "Set Rejected"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a charger
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Host       string    // Charger host (for context)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// classifyNetworkError analyzes a transport error and returns a more specific
// error type. URL errors are unwrapped and their cause classified instead.
func classifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &DeviceError{
			Type:    ErrTypeTimeout,
			Message: "request timed out",
			Host:    host,
			Err:     err,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("hostname resolution failed for %s", dnsErr.Name),
			Host:    host,
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &DeviceError{
				Type:    ErrTypeConnectionRefused,
				Message: "charger refused connection",
				Host:    host,
				Err:     err,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		classified := classifyNetworkError(urlErr.Err, host)
		if classified != nil {
			return classified
		}
	}

	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: "network error occurred",
		Host:    host,
		Err:     err,
	}
}

// newNetworkError creates a network-level error with automatic classification
func newNetworkError(message, host string, err error) *DeviceError {
	classified := classifyNetworkError(err, host)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: message,
		Host:    host,
		Err:     err,
	}
}

// newInvalidArgumentError creates an invalid-argument error
func newInvalidArgumentError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeInvalidArgument,
		Message: message,
	}
}

// newHTTPError creates an HTTP-level error
func newHTTPError(statusCode int, message, host string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Host:       host,
	}
}

// newAPIDisabledError creates the distinct error for 404 responses, which the
// charger returns when the local HTTP API v2 is switched off
func newAPIDisabledError(host string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeAPIDisabled,
		Message:    "HTTP API v2 not enabled on charger, enable it in the device settings",
		StatusCode: 404,
		Host:       host,
	}
}

// newDecodeError creates a decode error
func newDecodeError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeDecode,
		Message: message,
		Err:     err,
	}
}

// newRejectedError creates a rejected-set error
func newRejectedError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeRejected,
		Message: message,
	}
}

// IsInvalidArgument checks if an error is an invalid-argument error
func IsInvalidArgument(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeInvalidArgument
	}
	return false
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused and DNS failures)
func IsNetworkError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeNetwork ||
			devErr.Type == ErrTypeTimeout ||
			devErr.Type == ErrTypeConnectionRefused ||
			devErr.Type == ErrTypeDNS
	}
	return false
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeHTTP
	}
	return false
}

// IsAPIDisabled checks if an error indicates the local API v2 is not enabled
func IsAPIDisabled(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeAPIDisabled
	}
	return false
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeDecode
	}
	return false
}

// IsRejected checks if an error is a rejected-set error
func IsRejected(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeRejected
	}
	return false
}

// ShortMessage returns a concise, user-friendly message for an error.
// Intended for CLI output where the full chain is too noisy.
func ShortMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Charger not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Charger refused connection - check host and port"
	case ErrTypeDNS:
		return "Cannot resolve charger hostname"
	case ErrTypeAPIDisabled:
		return "HTTP API v2 is disabled on the charger - enable it in the go-e app"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Charger error (HTTP %d)", devErr.StatusCode)
	case ErrTypeDecode:
		return "Failed to decode charger response"
	default:
		return devErr.Message
	}
}
