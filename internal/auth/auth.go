package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt with cost 12.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// IsHash reports whether secret looks like a bcrypt hash.
func IsHash(secret string) bool {
	return strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$") || strings.HasPrefix(secret, "$2y$")
}

// CheckSecret compares a provided password against a configured secret,
// which may be stored either as plaintext or as a bcrypt hash. An empty
// provided password never matches.
func CheckSecret(provided, secret string) bool {
	if provided == "" || secret == "" {
		return false
	}
	if IsHash(secret) {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

// GenerateToken produces a cryptographically random token suitable for
// session IDs (32 bytes, base64url-encoded, 43 characters).
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
