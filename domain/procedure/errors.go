package procedure

import (
	"errors"
	"fmt"

	"github.com/artpar/rpcgate/core/schema"
)

// Code classifies a procedure error for clients. Codes map to fixed HTTP
// statuses; unrecognized codes map to 500.
type Code string

const (
	CodeBadRequest           Code = "BAD_REQUEST"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeMethodNotSupported   Code = "METHOD_NOT_SUPPORTED"
	CodeTimeout              Code = "TIMEOUT"
	CodeConflict             Code = "CONFLICT"
	CodePreconditionFailed   Code = "PRECONDITION_FAILED"
	CodePayloadTooLarge      Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeTooManyRequests      Code = "TOO_MANY_REQUESTS"
	CodeInternal             Code = "INTERNAL_SERVER_ERROR"
)

// Status returns the HTTP status for the code.
func (c Code) Status() int {
	switch c {
	case CodeBadRequest:
		return 400
	case CodeUnauthorized:
		return 401
	case CodeForbidden:
		return 403
	case CodeNotFound:
		return 404
	case CodeMethodNotSupported:
		return 405
	case CodeTimeout:
		return 408
	case CodeConflict:
		return 409
	case CodePreconditionFailed:
		return 412
	case CodePayloadTooLarge:
		return 413
	case CodeUnsupportedMediaType:
		return 415
	case CodeTooManyRequests:
		return 429
	default:
		return 500
	}
}

// Error is a domain error with a client-visible code and message.
// Validation failures additionally carry field-level issues.
type Error struct {
	Code    Code
	Message string
	Issues  []schema.Issue
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a procedure error with the given code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a procedure error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError normalizes any error into an *Error. Errors that are not domain
// errors are downgraded to INTERNAL_SERVER_ERROR with a generic message so
// internal error text never reaches the client.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Code: CodeInternal, Message: "internal server error"}
}
