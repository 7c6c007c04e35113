package utils

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNoContent
	KindNotFound
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNoContent:
		return "no_content"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// AppError carries a public message and status code. Err is the internal
// cause and is never written to clients.
type AppError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: message}
}

func NewNoContentError(message string, err error) *AppError {
	return &AppError{Kind: KindNoContent, StatusCode: http.StatusUnprocessableEntity, Message: message, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
