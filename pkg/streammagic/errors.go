package streammagic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind is the coarse category of a client error. Callers branch on the kind
// to decide between retrying, aborting and fixing the call site.
type ErrorKind int

const (
	// KindConnection covers timeouts, DNS failures, transport failures and
	// non-2xx HTTP responses: the device is unreachable or misbehaving.
	KindConnection ErrorKind = iota
	// KindProtocol means the device answered successfully but not with JSON.
	KindProtocol
	// KindValidation covers bad caller arguments and decoded values that do not
	// match the expected record shape.
	KindValidation
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "Connection Error"
	case KindProtocol:
		return "Protocol Error"
	case KindValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Reason is the fine-grained classification inside an ErrorKind.
type Reason int

const (
	ReasonNetwork Reason = iota
	ReasonTimeout
	ReasonCanceled
	ReasonDNS
	ReasonConnectionRefused
	ReasonConnectionReset
	ReasonHostUnreachable
	ReasonNetworkUnreachable
	ReasonHTTPStatus
	ReasonClosed
	ReasonContentType
	ReasonMalformedJSON
	ReasonResponseTooLarge
	ReasonArgument
	ReasonField
)

var reasonNames = map[Reason]string{
	ReasonNetwork:            "network",
	ReasonTimeout:            "timeout",
	ReasonCanceled:           "canceled",
	ReasonDNS:                "dns",
	ReasonConnectionRefused:  "connection_refused",
	ReasonConnectionReset:    "connection_reset",
	ReasonHostUnreachable:    "host_unreachable",
	ReasonNetworkUnreachable: "network_unreachable",
	ReasonHTTPStatus:         "http_status",
	ReasonClosed:             "closed",
	ReasonContentType:        "content_type",
	ReasonMalformedJSON:      "malformed_json",
	ReasonResponseTooLarge:   "response_too_large",
	ReasonArgument:           "argument",
	ReasonField:              "field",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", r)
}

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrConnection = errors.New("streammagic: connection error")
	ErrProtocol   = errors.New("streammagic: protocol error")
	ErrValidation = errors.New("streammagic: validation error")
)

// Error is returned by every Client operation.
type Error struct {
	Kind        ErrorKind // Coarse category
	Reason      Reason    // Fine-grained classification
	Message     string    // Human-readable message
	Host        string    // Device host (for context)
	StatusCode  int       // HTTP status (ReasonHTTPStatus only)
	ContentType string    // Declared content type (protocol errors)
	Body        string    // Raw response text (protocol and status errors)
	Field       string    // Wire field or argument name (validation errors)
	Err         error     // Underlying cause, if any
	Retryable   bool      // Whether the retry layer may try again
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// ClassifyNetworkError turns a transport-level failure into a connection error
// with a specific reason. It returns nil for a nil error.
func ClassifyNetworkError(err error, host string) *Error {
	if err == nil {
		return nil
	}

	e := &Error{
		Kind:      KindConnection,
		Reason:    ReasonNetwork,
		Message:   "network error occurred",
		Host:      host,
		Err:       err,
		Retryable: true,
	}

	// Caller cancellation is checked first: it is never worth retrying.
	if errors.Is(err, context.Canceled) {
		e.Reason = ReasonCanceled
		e.Message = "request canceled"
		e.Retryable = false
		return e
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		e.Reason = ReasonDNS
		e.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		e.Retryable = false
		return e
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		e.Reason = ReasonTimeout
		e.Message = "request timed out"
		return e
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		e.Reason = ReasonConnectionRefused
		e.Message = "device refused connection"
	case errors.Is(err, syscall.ECONNRESET):
		e.Reason = ReasonConnectionReset
		e.Message = "connection reset by device"
	case errors.Is(err, syscall.EHOSTUNREACH):
		e.Reason = ReasonHostUnreachable
		e.Message = "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		e.Reason = ReasonNetworkUnreachable
		e.Message = "network unreachable"
	}
	return e
}

// NewConnectionError creates a connection error with automatic classification
func NewConnectionError(message string, err error) *Error {
	if classified := ClassifyNetworkError(err, ""); classified != nil {
		classified.Message = message
		return classified
	}
	return &Error{
		Kind:      KindConnection,
		Reason:    ReasonNetwork,
		Message:   message,
		Retryable: true,
	}
}

// NewHTTPStatusError creates a connection error for a non-2xx response.
// Server errors are retryable, client errors are not.
func NewHTTPStatusError(statusCode int, body string) *Error {
	return &Error{
		Kind:       KindConnection,
		Reason:     ReasonHTTPStatus,
		Message:    fmt.Sprintf("unexpected status code: %d %s", statusCode, http.StatusText(statusCode)),
		StatusCode: statusCode,
		Body:       body,
		Retryable:  statusCode >= 500,
	}
}

// NewContentTypeError creates a protocol error for a non-JSON response.
func NewContentTypeError(contentType, body string) *Error {
	return &Error{
		Kind:        KindProtocol,
		Reason:      ReasonContentType,
		Message:     fmt.Sprintf("unexpected content type %q", contentType),
		ContentType: contentType,
		Body:        body,
	}
}

// NewMalformedJSONError creates a protocol error for a JSON response that does
// not parse.
func NewMalformedJSONError(contentType, body string, err error) *Error {
	return &Error{
		Kind:        KindProtocol,
		Reason:      ReasonMalformedJSON,
		Message:     "failed to parse JSON response",
		ContentType: contentType,
		Body:        body,
		Err:         err,
	}
}

// NewResponseTooLargeError creates a protocol error for a body over the read
// limit. The body itself is not kept.
func NewResponseTooLargeError(contentType string, limit int) *Error {
	return &Error{
		Kind:        KindProtocol,
		Reason:      ReasonResponseTooLarge,
		Message:     fmt.Sprintf("response body exceeds %d bytes", limit),
		ContentType: contentType,
	}
}

// NewValidationError creates a validation error for a bad caller argument
func NewValidationError(argument, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Reason:  ReasonArgument,
		Message: message,
		Field:   argument,
	}
}

// NewFieldError creates a validation error for a response field that is
// missing or has the wrong shape.
func NewFieldError(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Reason:  ReasonField,
		Message: fmt.Sprintf("field %q: %s", field, message),
		Field:   field,
	}
}

func errClosed(host string) *Error {
	return &Error{
		Kind:    KindConnection,
		Reason:  ReasonClosed,
		Message: "client is closed",
		Host:    host,
	}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsConnectionError reports whether err is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsProtocolError reports whether err is a protocol error
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTimeout reports whether err is a connection error caused by a deadline.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindConnection && e.Reason == ReasonTimeout
}

// IsRetryable checks if an error should be retried.
// Errors not produced by this package are not retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	e, ok := AsError(err)
	if !ok {
		return err.Error()
	}

	switch e.Reason {
	case ReasonTimeout:
		return "Device not responding (timeout)"
	case ReasonCanceled:
		return "Request canceled"
	case ReasonDNS:
		return "Cannot resolve device hostname"
	case ReasonConnectionRefused:
		return "Device refused connection"
	case ReasonConnectionReset:
		return "Connection reset by device"
	case ReasonHostUnreachable:
		return "Device unreachable - check network connection"
	case ReasonNetworkUnreachable:
		return "Network unreachable - check network connection"
	case ReasonHTTPStatus:
		return fmt.Sprintf("Device error (HTTP %d)", e.StatusCode)
	case ReasonClosed:
		return "Client already closed"
	case ReasonContentType:
		return fmt.Sprintf("Device returned %s instead of JSON", e.ContentType)
	case ReasonMalformedJSON:
		return "Failed to parse device response"
	case ReasonResponseTooLarge:
		return "Device response too large"
	case ReasonNetwork:
		return "Network error - check connection"
	default:
		return e.Message
	}
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	e, ok := AsError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Reason {
	case ReasonTimeout:
		return strings.Join([]string{
			"The device did not respond in time.",
			"Troubleshooting:",
			"  • Check that the device is powered on and not in deep standby",
			"  • Verify the host address is correct",
			"  • Try increasing --timeout",
		}, "\n")

	case ReasonConnectionRefused, ReasonConnectionReset:
		return strings.Join([]string{
			"The device refused or dropped the connection.",
			"Troubleshooting:",
			"  • The device's control API may still be starting - wait and retry",
			"  • Verify the host address points at the streamer, not another device",
		}, "\n")

	case ReasonDNS:
		return strings.Join([]string{
			"Could not resolve the device hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Check your network DNS settings",
		}, "\n")

	case ReasonHostUnreachable, ReasonNetworkUnreachable, ReasonNetwork:
		hint := []string{
			"Network communication failed.",
			"Troubleshooting:",
			"  • Check that you're on the same network as the device",
			"  • Ensure the device is powered on and connected",
		}
		if e.Host != "" {
			hint = append(hint, "  • Try pinging the device: ping "+e.Host)
		}
		return strings.Join(hint, "\n")

	case ReasonHTTPStatus:
		if e.StatusCode >= 500 {
			return strings.Join([]string{
				fmt.Sprintf("The device returned an error (HTTP %d).", e.StatusCode),
				"Troubleshooting:",
				"  • Try the command again with --retries",
				"  • Power-cycle the device",
			}, "\n")
		}
		return fmt.Sprintf("The device rejected the request (HTTP %d). Check the command arguments.", e.StatusCode)

	case ReasonContentType, ReasonMalformedJSON, ReasonResponseTooLarge:
		return strings.Join([]string{
			"The device's response was not the expected JSON.",
			"This may indicate a different device or an incompatible firmware.",
		}, "\n")

	case ReasonArgument, ReasonField:
		return "The values are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
