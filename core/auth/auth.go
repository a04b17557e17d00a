package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks an admin username/password pair. The request
// layer only depends on this interface, so the demo static check below
// can be swapped for real hashed-credential storage without touching
// handlers.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// StaticVerifier compares against a single fixed credential pair in
// constant time. This is a placeholder suitable only for demo
// deployments.
type StaticVerifier struct {
	username string
	password string
}

// NewStaticVerifier creates a verifier for one fixed credential pair.
func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

// Verify reports whether the pair matches the configured credentials.
func (v *StaticVerifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	return userOK && passOK
}

// BcryptVerifier compares against a bcrypt hash of the password.
type BcryptVerifier struct {
	username     string
	passwordHash string
}

// NewBcryptVerifier creates a verifier for a username and a bcrypt hash.
func NewBcryptVerifier(username, passwordHash string) *BcryptVerifier {
	return &BcryptVerifier{username: username, passwordHash: passwordHash}
}

// Verify reports whether the pair matches the stored hash.
func (v *BcryptVerifier) Verify(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)) == nil
}

// HashPassword generates a bcrypt hash of the password, for provisioning
// a BcryptVerifier.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}
