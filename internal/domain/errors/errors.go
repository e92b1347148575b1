package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrValidation            = errors.New("validation failed")
	ErrUpload                = errors.New("upload failed")
	ErrEmptyUpload           = errors.New("empty upload")
	ErrSubmission            = errors.New("transaction submission failed")
	ErrConfirmationTimeout   = errors.New("confirmation timed out")
	ErrDuplicateParameterKey = errors.New("duplicate parameter key")
	ErrMissingArgument       = errors.New("missing argument")
	ErrTooManyParameters     = errors.New("too many parameters")
	ErrBadRequest            = errors.New("bad request")
)

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrBadRequest)
}

// Validation flags a client-detectable precondition failure. No network
// side effect has happened when one of these is returned.
func Validation(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message, ErrValidation)
}

// Upload wraps err (when given) together with ErrUpload so the class stays
// detectable with errors.Is regardless of the underlying cause.
func Upload(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, errors.Join(ErrUpload, err))
}

func EmptyUpload(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrEmptyUpload)
}

func Submission(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, errors.Join(ErrSubmission, err))
}

func ConfirmationTimeout(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, ErrConfirmationTimeout)
}

func DuplicateParameterKey(key string) *AppError {
	return NewAppError(http.StatusBadRequest, "duplicate parameter key: "+key, ErrDuplicateParameterKey)
}

func MissingArgument(key string) *AppError {
	return NewAppError(http.StatusBadRequest, "missing argument for parameter: "+key, ErrMissingArgument)
}

func TooManyParameters(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrTooManyParameters)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// Is reports whether err wraps the given sentinel.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
