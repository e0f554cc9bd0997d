package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of its message.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindUnavailable       Kind = "unavailable"
	KindInternal          Kind = "internal"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Op      string `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Sentinels for errors.Is: a sentinel matches any AppError of the same kind.
var (
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition}
)

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// WithOp records the operation that produced the error, e.g. "matchUsecase.Transition".
func (e *AppError) WithOp(op string) *AppError {
	e.Op = op
	return e
}

// Wrap attaches the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForCode(code),
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation reports malformed input: empty required-skill set, bad skill token, bad status value.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Conflict reports a lost concurrent update or a score proposed for a terminal match.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func InvalidTransition(message string) *AppError {
	return New(http.StatusUnprocessableEntity, message, nil)
}

func Unavailable(message string) *AppError {
	return New(http.StatusServiceUnavailable, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindForCode(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindInvalidTransition
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}
