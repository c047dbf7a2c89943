// Package credentials wraps the one-way hashing used for stored secrets and
// the email normalization policy applied before any store lookup.
package credentials

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Work factors are deliberately asymmetric: the password hash defends a
// low-entropy secret against offline attack on a leaked database, while the
// refresh-token hash covers a value that is already high-entropy and
// short-lived.
const (
	passwordCost     = 12
	refreshTokenCost = 10
)

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashRefreshToken computes the secondary defense-in-depth hash of an issued
// refresh-token string. The raw token string is never stored. bcrypt caps its
// input at 72 bytes and encoded tokens are longer, so the string is digested
// before the adaptive pass.
func HashRefreshToken(tokenString string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digestToken(tokenString), refreshTokenCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckRefreshToken reports whether tokenString matches the stored hash.
func CheckRefreshToken(tokenString, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digestToken(tokenString)) == nil
}

func digestToken(tokenString string) []byte {
	sum := sha256.Sum256([]byte(tokenString))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// NormalizeEmail lowercases an email address. Every store lookup and insert
// goes through this, so comparisons are case-insensitive end to end.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
