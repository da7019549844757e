package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/littlesteps/internal/logger"
)

var (
	// ErrInvalidDocument is returned when a write fails the document shape check
	ErrInvalidDocument = stderrors.New("invalid")
	// ErrStorageUnavailable wraps failures of the underlying storage medium
	ErrStorageUnavailable = stderrors.New("storage unavailable")
	// ErrUnauthorized is returned for an unknown user or a wrong password
	ErrUnauthorized = stderrors.New("unauthorized")
	// ErrReadOnly is returned when a mutation is attempted without a signed-in user
	ErrReadOnly = stderrors.New("sign in to make changes")
	// ErrNotFound is returned when an id or username does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrProtectedUser guards the default admin account
	ErrProtectedUser = stderrors.New("the default admin account is protected")
)

// Is and As re-export the standard helpers so callers need one errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
