// Package auth holds the household credential scheme: bcrypt hashes with a
// read-only fallback for legacy plaintext records.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

var defaultAdminHash = sync.OnceValues(func() (string, error) {
	return HashPassword(constants.DefaultAdminPassword)
})

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewUserRecord builds a record with a hashed credential.
func NewUserRecord(username, password string) (models.UserRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.UserRecord{}, fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return models.UserRecord{}, fmt.Errorf("password cannot be empty")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.UserRecord{}, err
	}
	return models.UserRecord{Username: username, PasswordHash: hash}, nil
}

// DefaultAdmin returns the built-in admin record. The hash is computed once per process.
func DefaultAdmin() models.UserRecord {
	hash, err := defaultAdminHash()
	if err != nil {
		// bcrypt only fails for passwords over 72 bytes
		panic(err)
	}
	return models.UserRecord{Username: constants.DefaultAdminUsername, PasswordHash: hash}
}

// IsDefaultAdmin reports whether username names the protected admin account.
func IsDefaultAdmin(username string) bool {
	return username == constants.DefaultAdminUsername
}

// Verify compares password against the record's credential.
func Verify(user models.UserRecord, password string) bool {
	if user.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	}
	if user.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1
}

// FindUser looks a user up by exact username.
func FindUser(users []models.UserRecord, username string) (models.UserRecord, bool) {
	for _, u := range users {
		if u.Username == username {
			return u, true
		}
	}
	return models.UserRecord{}, false
}

// Authenticate reports whether the pair matches a stored user. Unknown users
// and wrong passwords both return false.
func Authenticate(users []models.UserRecord, username, password string) bool {
	user, ok := FindUser(users, username)
	if !ok {
		return false
	}
	return Verify(user, password)
}

// SetPassword returns a copy of user with a fresh hash and the legacy field cleared.
func SetPassword(user models.UserRecord, password string) (models.UserRecord, error) {
	if password == "" {
		return user, fmt.Errorf("password cannot be empty")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return user, err
	}
	user.PasswordHash = hash
	user.Password = ""
	return user, nil
}

// MigratePlaintext hashes every legacy plaintext record. It returns the new
// list and how many records changed.
func MigratePlaintext(users []models.UserRecord) ([]models.UserRecord, int, error) {
	out := make([]models.UserRecord, len(users))
	migrated := 0
	for i, u := range users {
		if !u.IsLegacy() {
			out[i] = u
			continue
		}
		next, err := SetPassword(u, u.Password)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to migrate %s: %w", u.Username, err)
		}
		out[i] = next
		migrated++
	}
	return out, migrated, nil
}
