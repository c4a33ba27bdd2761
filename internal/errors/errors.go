package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SyntaxError indicates a file could not be lexically scanned (file-scoped, non-fatal)
	SyntaxError ErrorCode = "SYNTAX_ERROR"
	// WorkerFault indicates a scan worker chunk failed unexpectedly (chunk-scoped, non-fatal)
	WorkerFault ErrorCode = "WORKER_FAULT"
	// Timeout indicates a scan chunk exceeded its budget (chunk-scoped, non-fatal)
	Timeout ErrorCode = "TIMEOUT"
	// ResolutionError indicates a relative import walked above its package root (record-scoped, non-fatal)
	ResolutionError ErrorCode = "RESOLUTION_ERROR"
	// CacheCorruption indicates a persisted cache entry was unreadable (degrades to a miss)
	CacheCorruption ErrorCode = "CACHE_CORRUPTION"
	// RootNotFound indicates the analysis root or target does not exist (fatal)
	RootNotFound ErrorCode = "ROOT_NOT_FOUND"
	// NoFiles indicates zero source files were discovered for the target (fatal)
	NoFiles ErrorCode = "NO_FILES"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError represents a fastdeps error with a stable code and message
type AnalysisError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new AnalysisError
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new AnalysisError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// IsFatal reports whether the error code aborts an analysis run.
// Only a missing root and an empty discovery are fatal; every other
// failure is scoped to a file, chunk, or record.
func IsFatal(code ErrorCode) bool {
	return code == RootNotFound || code == NoFiles
}
