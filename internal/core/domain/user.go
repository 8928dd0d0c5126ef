package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already taken")
var ErrInvalidLogin = errors.New("Unable to login")
var ErrUnauthenticated = errors.New("Please authenticate.")
var ErrValidation = errors.New("validation failed")
var ErrInvalidUpdate = errors.New("Invalid updates!")
var ErrNoImage = errors.New("image not found")

const MinPasswordLength = 7

// emailPattern is deliberately loose: one @, no spaces, a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User models an account holder. Password and Tokens never leave the API:
// both are excluded from every JSON response, as is the raw avatar blob.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Avatar       []byte    `json:"-"`
	Tokens       []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Normalize trims the name and lower-cases/trims the email in place.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate checks the persisted invariants of a user record. Call after
// Normalize. The plaintext password is validated separately, before hashing.
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if u.Age < 0 {
		return fmt.Errorf("%w: age must be a positive number", ErrValidation)
	}
	return nil
}

// HasToken reports whether token is currently a valid session for this user.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// ValidatePassword enforces the plaintext password policy: at least
// MinPasswordLength characters and no "password" substring in any casing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return fmt.Errorf("%w: password must not contain \"password\"", ErrValidation)
	}
	return nil
}
