package service

import "fmt"

// Kind groups service failures the way the API reports them: validation
// and state errors are caller mistakes detected before any mutation,
// concurrency errors surface after the bounded retry budget is spent,
// collaborator errors mean the store or an upstream service failed.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindState        Kind = "state"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindAuth         Kind = "auth"
	KindForbidden    Kind = "forbidden"
	KindConcurrency  Kind = "concurrency"
	KindCollaborator Kind = "collaborator"
)

// Error is the structured failure every operation returns: a stable
// machine-readable code plus a human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// MissingFields reports required request fields that were absent.
func MissingFields(message string) *Error {
	return &Error{Kind: KindValidation, Code: "missing_fields", Message: message}
}

// BadRequest wraps a body-binding failure from the HTTP layer.
func BadRequest(cause error) *Error {
	return &Error{Kind: KindValidation, Code: "malformed_request", Message: "request body could not be parsed", cause: cause}
}

func validationError(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func stateError(code, format string, args ...any) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func authError(code, format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Code: code, Message: fmt.Sprintf(format, args...)}
}

func collaboratorError(code string, cause error) *Error {
	return &Error{Kind: KindCollaborator, Code: code, Message: "a dependency is unavailable", cause: cause}
}
