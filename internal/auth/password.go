package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a presented credential does not match
// the stored one.
var ErrPasswordMismatch = errors.New("password mismatch")

// Verifier abstracts credential comparison so the portal's flat plaintext
// scheme can be swapped for a hashed one without touching the login state
// machine.
type Verifier interface {
	// Hash prepares a plaintext password for storage.
	Hash(plain string) (string, error)
	// Verify compares a stored credential with a presented password.
	Verify(stored, presented string) error
}

// PlaintextVerifier compares credentials byte for byte. This is the scheme
// the portal ships with.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlaintextVerifier) Verify(stored, presented string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// BcryptVerifier hashes stored credentials with bcrypt at the configured
// cost.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), v.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (v BcryptVerifier) Verify(stored, presented string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// NewVerifier selects a verifier by scheme name, defaulting to plaintext.
func NewVerifier(scheme string, bcryptCost int) Verifier {
	if scheme == "bcrypt" {
		return BcryptVerifier{Cost: bcryptCost}
	}
	return PlaintextVerifier{}
}
