package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes returned in API responses.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeUnverified         = "UNVERIFIED"
	CodeNotFound           = "NOT_FOUND"
	CodeExpired            = "CODE_EXPIRED"
	CodeInvalid            = "CODE_INVALID"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUpstream           = "UPSTREAM_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response.
// Msg mirrors Error for clients that read the "msg" field.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Msg     string            `json:"msg"`
	Code    string            `json:"code,omitempty"`
	Missing map[string]string `json:"missing,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// Fields lists offending form fields for validation failures.
	Fields map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so callers can use errors.Is with the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// Code sentinels for errors.Is comparisons.
var (
	ErrValidation         = &AppError{Code: CodeValidation}
	ErrConflict           = &AppError{Code: CodeConflict}
	ErrUnauthenticated    = &AppError{Code: CodeUnauthenticated}
	ErrUnverified         = &AppError{Code: CodeUnverified}
	ErrNotFound           = &AppError{Code: CodeNotFound}
	ErrExpired            = &AppError{Code: CodeExpired}
	ErrInvalid            = &AppError{Code: CodeInvalid}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials}
	ErrUpstream           = &AppError{Code: CodeUpstream}
	ErrInternal           = &AppError{Code: CodeInternal}
)

// ErrorCode extracts the AppError code from err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// NewNotFoundMessage builds a NOT_FOUND error with a caller supplied message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewMissingFieldsError reports required fields that are absent or malformed.
func NewMissingFieldsError(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "Please fill in all required fields",
		Fields:  fields,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

func NewUnverifiedError(message string) *AppError {
	return &AppError{Code: CodeUnverified, Message: message}
}

func NewExpiredError(message string) *AppError {
	return &AppError{Code: CodeExpired, Message: message}
}

func NewInvalidCodeError(message string) *AppError {
	return &AppError{Code: CodeInvalid, Message: message}
}

func NewInvalidCredentialsError(message string) *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: message}
}

// NewUpstreamError wraps failures of external collaborators (storage, mail, code registry).
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response. Wrapped causes are
// never exposed to clients.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:   appErr.Message,
			Msg:     appErr.Message,
			Code:    appErr.Code,
			Missing: appErr.Fields,
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
			Msg:   err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
