// Package domainerrors defines the coded error type shared by all modules.
//
// Stores return sentinel errors (pkg/platform/sentinel) for infrastructure
// facts; services translate those into coded errors; the HTTP layer maps
// codes to statuses. Codes describe the externally observable outcome, so a
// handler never needs to inspect error messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and policy decisions.
type Code string

const (
	// CodeBadRequest covers malformed requests (unparseable body, bad id).
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers well-formed requests with invalid content
	// (missing denial reason, empty form name).
	CodeValidation Code = "validation_failed"
	// CodeUnauthorized means no authenticated principal was presented.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the resource exists but the principal does not own
	// its premise. Distinct from CodeNotFound so callers can render 403 vs 404.
	CodeForbidden Code = "forbidden"
	// CodeNotFound means the referenced resource does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers uniqueness violations surfaced to the caller
	// (second premise for the same owner, form deletion with live QR codes).
	CodeConflict Code = "conflict"
	// CodeInvalidState means the requested transition is not valid from the
	// visit's current status. Expected outcome of concurrent decisions.
	CodeInvalidState Code = "invalid_state_transition"
	// CodeInvariantViolation marks a broken model invariant detected at the
	// domain layer. Services translate it before it reaches transport.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeConfigFault marks a configuration-integrity fault (premise mismatch
	// between linked resources). Never caused by end-user input; logged as a
	// system error and rendered as an opaque 500.
	CodeConfigFault Code = "configuration_fault"
	// CodeInternal covers store connectivity and other infrastructure
	// failures. Detail stays in server logs.
	CodeInternal Code = "internal_error"
)

// Error is the coded error carried between layers. Wrapping preserves the
// cause chain for logs while the code drives the external response.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message, empty for non-domain errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status. Invalid state transitions map
// to 400 because they are caller errors against the current resource state.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidState:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
