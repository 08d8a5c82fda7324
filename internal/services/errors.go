package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these; anything else is unexpected.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrValidation         = errors.New("validation failed")
)

// Error carries a client-facing message and a stable code on top of its kind.
type Error struct {
	Kind    error
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Business codes shared with the HTTP envelope.
const (
	CodeUserNotFound        = 1001
	CodeUserAlreadyExists   = 1002
	CodeInvalidCredentials  = 1003
	CodeTokenExpired        = 1004
	CodeInvalidToken        = 1005
	CodeTaskNotFound        = 2001
	CodeTaskAccessDenied    = 2002
	CodeCommentNotFound     = 3001
	CodeCommentAccessDenied = 3002
	CodeValidationFailed    = 422
)

var (
	ErrUserNotFound         = newError(ErrNotFound, CodeUserNotFound, "user not found")
	ErrAssigneeNotFound     = newError(ErrNotFound, CodeUserNotFound, "assignee not found")
	ErrUserAlreadyExists    = newError(ErrAlreadyExists, CodeUserAlreadyExists, "username or email already exists")
	ErrUsernameTaken        = newError(ErrAlreadyExists, CodeUserAlreadyExists, "username is already taken")
	ErrEmailTaken           = newError(ErrAlreadyExists, CodeUserAlreadyExists, "email is already in use")
	ErrWrongPassword        = newError(ErrInvalidCredentials, CodeInvalidCredentials, "invalid username or password")
	ErrTokenExpired         = newError(ErrInvalidCredentials, CodeTokenExpired, "token expired")
	ErrInvalidToken         = newError(ErrInvalidCredentials, CodeInvalidToken, "invalid token")
	ErrTaskNotFound         = newError(ErrNotFound, CodeTaskNotFound, "task not found")
	ErrTaskAccessDenied     = newError(ErrAccessDenied, CodeTaskAccessDenied, "you do not have permission to modify this task")
	ErrCommentNotFound      = newError(ErrNotFound, CodeCommentNotFound, "comment not found")
	ErrCommentAccessDenied  = newError(ErrAccessDenied, CodeCommentAccessDenied, "you can only delete your own comments")
	ErrAIServiceUnavailable = errors.New("AI service is not configured")
)

// validationError reports malformed input for a single field.
func validationError(format string, args ...any) *Error {
	return newError(ErrValidation, CodeValidationFailed, fmt.Sprintf(format, args...))
}
