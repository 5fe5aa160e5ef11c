package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// CredentialVerifier decides whether a password is accepted for a principal.
type CredentialVerifier interface {
	Verify(user *models.User, password string) bool
}

// SharedSecretVerifier accepts one secret for every account. The secret is kept only
// as a bcrypt hash.
type SharedSecretVerifier struct {
	hash []byte
}

// NewSharedSecretVerifier hashes the shared secret.
func NewSharedSecretVerifier(secret string) (*SharedSecretVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash shared secret: %w", err)
	}
	return &SharedSecretVerifier{hash: hash}, nil
}

// Verify ignores the principal and compares the password against the shared secret.
func (v *SharedSecretVerifier) Verify(_ *models.User, password string) bool {
	if v == nil || len(v.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}

// CredentialVerifierFunc adapts a function to CredentialVerifier.
type CredentialVerifierFunc func(user *models.User, password string) bool

// Verify calls f.
func (f CredentialVerifierFunc) Verify(user *models.User, password string) bool {
	return f(user, password)
}
