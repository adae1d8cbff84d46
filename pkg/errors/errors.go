package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCancelled     ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Link inspection errors
	ErrNotASymlink      ErrorCode = "NOT_A_SYMLINK"
	ErrRootUnresolvable ErrorCode = "ROOT_UNRESOLVABLE"
	ErrTargetMissing    ErrorCode = "TARGET_MISSING"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrSymlinkExists ErrorCode = "SYMLINK_EXISTS"
	ErrBackup        ErrorCode = "BACKUP"
	ErrSwap          ErrorCode = "SWAP"
	ErrMove          ErrorCode = "MOVE"
)

// LneditError represents a structured error with code and details
type LneditError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LneditError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LneditError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LneditError) Is(target error) bool {
	var targetErr *LneditError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LneditError with the given code and message
func New(code ErrorCode, message string) *LneditError {
	return &LneditError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LneditError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LneditError {
	return &LneditError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LneditError
func Wrap(err error, code ErrorCode, message string) *LneditError {
	if err == nil {
		return nil
	}
	return &LneditError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LneditError {
	if err == nil {
		return nil
	}
	return &LneditError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LneditError) WithDetail(key string, value interface{}) *LneditError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *LneditError) WithDetails(details map[string]interface{}) *LneditError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var lneditErr *LneditError
	if errors.As(err, &lneditErr) {
		return lneditErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LneditError
func GetErrorCode(err error) ErrorCode {
	var lneditErr *LneditError
	if errors.As(err, &lneditErr) {
		return lneditErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a LneditError
func GetErrorDetails(err error) map[string]interface{} {
	var lneditErr *LneditError
	if errors.As(err, &lneditErr) {
		return lneditErr.Details
	}
	return nil
}

// DetailString returns a string detail from an error, or "" when absent
func DetailString(err error, key string) string {
	details := GetErrorDetails(err)
	if details == nil {
		return ""
	}
	if s, ok := details[key].(string); ok {
		return s
	}
	return ""
}
