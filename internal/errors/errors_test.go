package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("save state: %w", ErrInvalidDocument),
			expected: "Error: save state: invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("user %s not found", "amy")
	if got != "Error: user amy not found" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	sentinels := []error{
		ErrInvalidDocument,
		ErrStorageUnavailable,
		ErrUnauthorized,
		ErrReadOnly,
		ErrNotFound,
		ErrProtectedUser,
	}
	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", sentinel))
		if !Is(wrapped, sentinel) {
			t.Errorf("Is(%v, %v) = false", wrapped, sentinel)
		}
	}
	if Is(fmt.Errorf("x: %w", ErrNotFound), ErrUnauthorized) {
		t.Error("distinct sentinels must not match")
	}
}

func TestFatal(t *testing.T) {
	if os.Getenv("TEST_FATAL_SUBPROCESS") == "1" {
		Fatal(stderrors.New("storage unavailable"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "TEST_FATAL_SUBPROCESS=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "Error: storage unavailable") {
		t.Fatalf("expected stderr to contain error, got %q", string(out))
	}
}
