package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestAccount(t *testing.T) {
	tests := []struct {
		server, username, want string
	}{
		{"http://localhost:3001", "eddie", "eddie@http://localhost:3001"},
		{"http://nas.local:3001/", " Amy ", "amy@http://nas.local:3001"},
	}
	for _, tt := range tests {
		if got := Account(tt.server, tt.username); got != tt.want {
			t.Errorf("Account(%q, %q) = %q, want %q", tt.server, tt.username, got, tt.want)
		}
	}
}

func TestSetAndGetPassword(t *testing.T) {
	gokeyring.MockInit()
	account := Account("http://localhost:3001", "amy")

	if err := SetPassword(account, "hunter2"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	got, err := GetPassword(account)
	if err != nil {
		t.Fatalf("GetPassword() failed: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("GetPassword() = %q, want %q", got, "hunter2")
	}
}

func TestSetPasswordEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetPassword("amy@x", ""); err == nil {
		t.Error("SetPassword with empty password should return an error")
	}
}

func TestGetPasswordNotFound(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetPassword("nobody@x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPassword() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeletePassword(t *testing.T) {
	gokeyring.MockInit()
	account := Account("http://localhost:3001", "amy")

	if err := SetPassword(account, "hunter2"); err != nil {
		t.Fatal(err)
	}
	if err := DeletePassword(account); err != nil {
		t.Fatalf("DeletePassword() failed: %v", err)
	}
	if _, err := GetPassword(account); !errors.Is(err, ErrNotFound) {
		t.Errorf("password still present after delete: %v", err)
	}
	if err := DeletePassword(account); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePassword() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))
	defer gokeyring.MockInit()

	if IsAvailable() {
		t.Error("IsAvailable() = true when the keyring errors")
	}
	if _, err := GetPassword("amy@x"); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetPassword() error = %v, want %v", err, ErrKeyringUnavailable)
	}
}
