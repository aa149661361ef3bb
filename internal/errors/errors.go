// Package errors provides custom error types for the Rigforge API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same error code, so sentinels
// survive Wrap/WithMessage copies when checked with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrTokenBlacklisted   = &AppError{Code: "TOKEN_BLACKLISTED", Message: "Token is no longer valid", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Build generation errors.
var (
	ErrBudgetOutOfRange = &AppError{Code: "BUDGET_OUT_OF_RANGE", Message: "Budget is outside the supported price range", StatusCode: http.StatusBadRequest}
	ErrNoValidPart      = &AppError{Code: "NO_VALID_PART", Message: "No catalog part satisfies the budget for a component", StatusCode: http.StatusUnprocessableEntity}
)

// Build ledger errors.
var (
	ErrBuildNotFound    = &AppError{Code: "BUILD_NOT_FOUND", Message: "Build not found", StatusCode: http.StatusNotFound}
	ErrInvalidComponent = &AppError{Code: "INVALID_COMPONENT", Message: "Unrecognized build component", StatusCode: http.StatusBadRequest}

	// ErrBuildIndexInconsistent reports a two-document operation that
	// partially succeeded: the builds table changed but the per-user
	// index did not. The user-visible state DID change, so callers must
	// treat this as a warning, never as BUILD_NOT_FOUND or a storage
	// failure.
	ErrBuildIndexInconsistent = &AppError{Code: "BUILD_INDEX_INCONSISTENT", Message: "Build was written but the user's build index was not updated", StatusCode: http.StatusOK}
)
