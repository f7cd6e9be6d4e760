package docqa

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// Codes classify errors for programmatic handling at package boundaries.
// Lower-level errors are translated into one of these before crossing
// into the orchestrator or the CLI.
const (
	ECONFLICT     = "conflict"     // action conflicts with current state
	EINTERNAL     = "internal"     // internal error
	EINVALID      = "invalid"      // validation failed
	ELOCKED       = "locked"       // vault is locked
	ENOTFOUND     = "not_found"    // entity does not exist
	EUNAUTHORIZED = "unauthorized" // wrong password or failed key unwrap
	EUNAVAILABLE  = "unavailable"  // required resource missing or unreachable
	EUNSUPPORTED  = "unsupported"  // operation or input not supported
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docqa error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode returns the code of the root error, if available.
// Returns EINTERNAL for non-application errors.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the root error, if available.
// Returns a generic message for non-application errors.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
