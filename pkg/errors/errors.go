package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/diallo/callreview/pkg/i18n"
)

// Standard error types
var (
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("resource conflict")
	ErrInternal   = errors.New("internal server error")
	ErrValidation = errors.New("validation error")

	// Resource client outcomes
	ErrTransport     = errors.New("transport failure")
	ErrDomainFailure = errors.New("domain failure")
	ErrDecode        = errors.New("decode failure")

	// Upload validation outcomes
	ErrMissingFields   = errors.New("missing fields")
	ErrInvalidFileType = errors.New("invalid file type")

	// Report normalization outcome
	ErrNotAnObject = errors.New("report document is not an object")
)

// Error codes
const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeTransport       = "TRANSPORT"
	CodeDomainFailure   = "DOMAIN_FAILURE"
	CodeDecode          = "DECODE"
	CodeMissingFields   = "MISSING_FIELDS"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeNotAnObject     = "NOT_AN_OBJECT"
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	MessageKey string            `json:"-"` // i18n key for localization
	Params     map[string]string `json:"-"` // Parameters for i18n interpolation
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Localize returns a localized version of the error message
func (e *AppError) Localize(ctx context.Context) string {
	if e.MessageKey == "" {
		return e.Message
	}
	return i18n.TFromContext(ctx, e.MessageKey, e.Params)
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		MessageKey: "errors.not_found",
		Params:     map[string]string{"resource": resource},
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       CodeBadRequest,
		Message:    message,
		MessageKey: "errors.bad_request",
		StatusCode: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       CodeConflict,
		Message:    message,
		MessageKey: "errors.conflict",
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       CodeInternal,
		Message:    message,
		MessageKey: "errors.internal",
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       CodeValidation,
		Message:    "validation failed",
		MessageKey: "errors.validation_failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Transport reports a network failure, a timeout or a non-2xx answer without a usable body
func Transport(cause error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrTransport, cause),
		Code:       CodeTransport,
		Message:    "backend unreachable",
		MessageKey: "errors.transport",
		StatusCode: http.StatusBadGateway,
	}
}

// DomainFailure reports a well-formed envelope whose success flag is false
func DomainFailure(message string) *AppError {
	return &AppError{
		Err:        ErrDomainFailure,
		Code:       CodeDomainFailure,
		Message:    message,
		MessageKey: "errors.domain_failure",
		Params:     map[string]string{"message": message},
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// Decode reports a body that could not be parsed as the expected structure
func Decode(cause error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrDecode, cause),
		Code:       CodeDecode,
		Message:    "unexpected backend response",
		MessageKey: "errors.decode",
		StatusCode: http.StatusBadGateway,
	}
}

func MissingFields(fields map[string]string) *AppError {
	return &AppError{
		Err:        ErrMissingFields,
		Code:       CodeMissingFields,
		Message:    "please fill all fields and upload a file",
		MessageKey: "errors.missing_fields",
		StatusCode: http.StatusBadRequest,
		Details:    fields,
	}
}

func InvalidFileType(name string) *AppError {
	return &AppError{
		Err:        ErrInvalidFileType,
		Code:       CodeInvalidFileType,
		Message:    "please upload a valid audio or .gsm file",
		MessageKey: "errors.invalid_file_type",
		Params:     map[string]string{"name": name},
		StatusCode: http.StatusBadRequest,
	}
}

func NotAnObject(kind string) *AppError {
	return &AppError{
		Err:        ErrNotAnObject,
		Code:       CodeNotAnObject,
		Message:    fmt.Sprintf("report document is a %s, not an object", kind),
		MessageKey: "errors.not_an_object",
		StatusCode: http.StatusBadGateway,
	}
}

// CodeOf returns the AppError code carried by err, or CodeInternal
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
