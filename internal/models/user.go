package models

// UserRecord is one household login. Password is the legacy plaintext field,
// only read when PasswordHash is empty.
type UserRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Password     string `json:"password,omitempty"`
}

// IsLegacy reports whether the record still carries a plaintext credential.
func (u UserRecord) IsLegacy() bool {
	return u.PasswordHash == "" && u.Password != ""
}
