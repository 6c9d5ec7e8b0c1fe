package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// ErrorKind classifies failures surfaced by the request handlers.
type ErrorKind string

const (
	InvalidInput    ErrorKind = "InvalidInput"
	NotFound        ErrorKind = "NotFound"
	ServerConfig    ErrorKind = "ServerConfig"
	UpstreamFailure ErrorKind = "UpstreamFailure"
	InternalError   ErrorKind = "InternalError"
)

// Error is a classified application error. Status is only meaningful for UpstreamFailure,
// where it carries the third party's status code.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// HTTPStatus returns the status code an Error maps to.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UpstreamFailure:
		if e.Status >= http.StatusBadRequest {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewInvalidInputError(msg string) error {
	return &Error{Kind: InvalidInput, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: NotFound, Message: msg}
}

func NewServerConfigError(msg string) error {
	return &Error{Kind: ServerConfig, Message: msg}
}

func NewUpstreamError(msg string, status int, details interface{}, err error) error {
	return &Error{Kind: UpstreamFailure, Message: msg, Status: status, Details: details, Err: err}
}

func NewInternalError(msg string, err error) error {
	return &Error{Kind: InternalError, Message: msg, Err: err}
}

// KindOf returns the ErrorKind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return ""
}

// ErrDocNotFound is returned by a DocumentStore when a document does not exist.
var ErrDocNotFound = errors.New("document not found")

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
