package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new passwords.
var PasswordCost = bcrypt.DefaultCost

// Validate checks the user fields.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate stamps the join date.
func (u *User) BeforeCreate() {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
}

// SetPassword stores a bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	if raw == "" {
		return errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether raw matches the stored hash. Users created
// without a password can never log in with one.
func (u *User) CheckPassword(raw string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(raw)) == nil
}

func (u *User) String() string {
	return u.Username
}
