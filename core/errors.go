package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// Messages shared by all domain services.
const (
	MsgInvalidParams = "Something doesn't look right, please double-check the parameters and try again"
	MsgInvalidToken  = "It appears you provided an invalid token. Please double-check your authorisation and try again."
	MsgNotAuthorised = "It appears you are not authorised to perform this action. Please double-check your authorisation and try again."
	MsgBadRequest    = "Bad request"
)

// ErrInvalidReference is returned by repositories when a row points to a missing parent row.
var ErrInvalidReference = errors.New("invalid reference")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports missing or malformed input: 422 by default, 400 when built with NewBadRequestError.
type ValidationError struct {
	Err    error
	Fields []FieldError
	Status int
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds, Status: http.StatusUnprocessableEntity}
}

func NewBadRequestError(msg string) error {
	return &ValidationError{Err: errors.New(msg), Status: http.StatusBadRequest}
}

// NewInvalidParamsError is the catch-all validation failure of the domain creators.
func NewInvalidParamsError(flds ...FieldError) error {
	return NewValidationError(errors.New(MsgInvalidParams), flds...)
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// AuthError reports a missing, invalid or insufficient credential.
type AuthError struct {
	Message string
	Status  int
}

func NewAuthError(msg string) error {
	return &AuthError{Message: msg, Status: http.StatusUnauthorized}
}

// NewLoginError is the failed-credentials flavour of AuthError; the login contract answers it with a 422.
func NewLoginError(msg string) error {
	return &AuthError{Message: msg, Status: http.StatusUnprocessableEntity}
}

func (err AuthError) Error() string {
	return err.Message
}

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Message: msg}
}

func (err NotFoundError) Error() string {
	return err.Message
}

// ConflictError reports a uniqueness violation; the write that caused it has been rolled back.
type ConflictError struct {
	Message string
	Err     error
}

func NewConflictError(msg string, err error) error {
	return &ConflictError{Message: msg, Err: err}
}

func (err ConflictError) Error() string {
	return err.Message
}

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
