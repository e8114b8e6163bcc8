package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this many bytes.
const maxPasswordBytes = 72

var (
	// ErrWeakPassword is returned for an empty or whitespace-only password.
	ErrWeakPassword = errors.New("password: empty password")
	// ErrPasswordTooLong is returned for passwords bcrypt would truncate.
	ErrPasswordTooLong = fmt.Errorf("password: longer than %d bytes", maxPasswordBytes)
	// ErrMalformedHash is returned when a stored admin hash is not bcrypt.
	ErrMalformedHash = errors.New("password: malformed bcrypt hash")
)

// Hasher hashes and checks admin passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	// CheckHash rejects a stored hash that Compare could never accept.
	CheckHash(hash string) error
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher. A cost outside bcrypt's range,
// including 0, means bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash converts an operator password into a hash.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks a password against a stored hash. A hash that is not
// bcrypt at all yields ErrMalformedHash rather than a plain mismatch.
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMalformedHash, err)
}

// CheckHash parses hash without a password.
func (h *BcryptHasher) CheckHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return nil
}
