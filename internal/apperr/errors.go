// Package apperr holds the closed error taxonomy shared by every service and
// the responder that turns those errors into HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is one member of the closed error taxonomy.
type Kind int

const (
	KindApp Kind = iota
	KindAuth
	KindNotFound
	KindGitHub
	KindDatabase
	KindInternal
)

// Status returns the default HTTP status of the kind.
func (k Kind) Status() int {
	switch k {
	case KindApp:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindGitHub:
		return http.StatusBadGateway
	case KindDatabase:
		return http.StatusServiceUnavailable
	case KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Code returns the default machine-readable code of the kind.
func (k Kind) Code() string {
	switch k {
	case KindApp:
		return "APP_ERROR"
	case KindAuth:
		return "AUTH_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindGitHub:
		return "GITHUB_ERROR"
	case KindDatabase:
		return "DATABASE_ERROR"
	case KindInternal:
		return "INTERNAL_ERROR"
	}
	return "INTERNAL_ERROR"
}

// String returns the type name reported on the wire.
func (k Kind) String() string {
	switch k {
	case KindApp:
		return "AppError"
	case KindAuth:
		return "AuthError"
	case KindNotFound:
		return "NotFoundError"
	case KindGitHub:
		return "GitHubError"
	case KindDatabase:
		return "DatabaseError"
	case KindInternal:
		return "InternalError"
	}
	return "InternalError"
}

// Error is a classified application error. Cause is kept for logs and
// errors.Is/As but never reaches the wire.
type Error struct {
	Kind       Kind
	Message    string
	Code       string
	StatusCode int
	Details    map[string]any
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetails merges details into the error and returns it.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// New builds an error of the given kind with the kind's defaults.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Code:       kind.Code(),
		StatusCode: kind.Status(),
		Details:    map[string]any{},
		Cause:      cause,
	}
}

// NewApp builds a generic application error with a custom code and status.
// Empty code or zero status fall back to APP_ERROR / 400.
func NewApp(message, code string, status int, details map[string]any) *Error {
	e := New(KindApp, message, nil)
	if code != "" {
		e.Code = code
	}
	if status != 0 {
		e.StatusCode = status
	}
	return e.WithDetails(details)
}

func Auth(message string, cause error) *Error {
	return New(KindAuth, message, cause)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Database(message string, cause error) *Error {
	return New(KindDatabase, message, cause)
}

func Internal(message string, cause error) *Error {
	return New(KindInternal, message, cause)
}

// RateLimit carries the code host's rate-limit numbers. Nil fields are
// left out of the error details.
type RateLimit struct {
	Limit      *int64
	Remaining  *int64
	Reset      *int64
	RetryAfter *int64
}

// GitHub builds an upstream code-host error.
func GitHub(message string, rl RateLimit, cause error) *Error {
	e := New(KindGitHub, message, cause)
	setInt(e.Details, "limit", rl.Limit)
	setInt(e.Details, "remaining", rl.Remaining)
	setInt(e.Details, "reset", rl.Reset)
	setInt(e.Details, "retryAfter", rl.RetryAfter)
	return e
}

func setInt(m map[string]any, key string, v *int64) {
	if v != nil {
		m[key] = *v
	}
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err's chain holds a classified error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
