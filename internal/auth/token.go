// Package auth provides passwordless magic-link authentication.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: np{kind}_{secret}
// Example: npl_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	// KindLogin marks single-use magic-link tokens.
	KindLogin = "l"
	// KindSession marks long-lived session tokens.
	KindSession = "s"

	// tokenSecretBytes is the entropy of a token (256 bits).
	tokenSecretBytes = 32
)

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^np([ls])_([a-f0-9]{64})$`)
)

// GenerateToken creates a new random bearer token of the given kind.
// Tokens are 256-bit random values; only their SHA-256 digest is ever
// stored server-side.
func GenerateToken(kind string) (string, error) {
	if kind != KindLogin && kind != KindSession {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	secret := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return fmt.Sprintf("np%s_%s", kind, hex.EncodeToString(secret)), nil
}

// ParseToken validates the token format and returns its kind.
func ParseToken(token string) (string, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return "", ErrInvalidTokenFormat
	}
	return matches[1], nil
}

// HashToken returns the hex SHA-256 digest of a token for storage and
// lookup. The plaintext token is never stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
