package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Scoring and ledger contract errors
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInvalidState ErrorCode = "INVALID_STATE"

	// Game session errors
	ErrGameNotFound ErrorCode = "GAME_NOT_FOUND"

	// Command errors
	ErrInvalidCommand   ErrorCode = "INVALID_COMMAND"
	ErrInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Boundary errors, raised by the card detection client
	ErrExternalSupplier ErrorCode = "EXTERNAL_SUPPLIER"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"

	// System errors
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrDatabaseError ErrorCode = "DATABASE_ERROR"
)

// GameError represents a game-related error
type GameError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GameError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a GameError with the same code, so callers can
// match with errors.Is(err, &GameError{Code: ErrInvalidState}).
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewGameError creates a new GameError
func NewGameError(code ErrorCode, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error in a GameError
func WrapError(code ErrorCode, message string, err error) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidInput builds an INVALID_INPUT error with a formatted message
func InvalidInput(format string, args ...interface{}) *GameError {
	return NewGameError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StateError builds an INVALID_STATE error with a formatted message
func StateError(format string, args ...interface{}) *GameError {
	return NewGameError(ErrInvalidState, fmt.Sprintf(format, args...))
}

// IsGameError checks if an error is a GameError and has a specific code
func IsGameError(err error, code ErrorCode) bool {
	var gameErr *GameError
	if err == nil {
		return false
	}
	if ok := As(err, &gameErr); !ok {
		return false
	}
	return gameErr.Code == code
}

// As finds the first GameError in err's chain
func As(err error, target **GameError) bool {
	if target == nil || err == nil {
		return false
	}
	return errors.As(err, target)
}

// CodeOf returns the code of the first GameError in err's chain, or
// ErrInternalError when there is none.
func CodeOf(err error) ErrorCode {
	var gameErr *GameError
	if As(err, &gameErr) {
		return gameErr.Code
	}
	return ErrInternalError
}
