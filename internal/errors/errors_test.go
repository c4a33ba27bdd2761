package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewWithCause(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(CacheCorruption, "cache entry unreadable", cause)

	if err.Code != CacheCorruption {
		t.Errorf("Code = %v, want %v", err.Code, CacheCorruption)
	}
	if err.Message != "cache entry unreadable" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}

	msg := err.Error()
	if !strings.Contains(msg, "CACHE_CORRUPTION") || !strings.Contains(msg, "underlying error") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestNewWithoutCause(t *testing.T) {
	err := New(RootNotFound, "target not found", nil)

	if err.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause was given")
	}
	if got := err.Error(); got != "[ROOT_NOT_FOUND] target not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(NoFiles, "no Python files found under %s", "/tmp/empty")

	if err.Code != NoFiles {
		t.Errorf("Code = %v, want %v", err.Code, NoFiles)
	}
	if !strings.Contains(err.Message, "/tmp/empty") {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ResolutionError, "import level exceeds depth", nil).
		WithDetails(map[string]interface{}{"level": 5, "depth": 2})

	details, ok := err.Details.(map[string]interface{})
	if !ok || details["level"] != 5 {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestErrorsAs(t *testing.T) {
	var err error = New(SyntaxError, "bad import statement", nil)

	var ae *AnalysisError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As failed to match *AnalysisError")
	}
	if ae.Code != SyntaxError {
		t.Errorf("Code = %v, want %v", ae.Code, SyntaxError)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		code  ErrorCode
		fatal bool
	}{
		{RootNotFound, true},
		{NoFiles, true},
		{SyntaxError, false},
		{WorkerFault, false},
		{Timeout, false},
		{ResolutionError, false},
		{CacheCorruption, false},
		{InternalError, false},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.code); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.code, got, tt.fatal)
		}
	}
}
