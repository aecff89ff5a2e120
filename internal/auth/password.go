package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. The salt is stored hex-encoded and the
// encoded form (not the raw bytes) feeds the KDF, so existing hashes
// must never be re-derived with different encoding.
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLength  = 32
	saltLength       = 32
)

// HashPassword derives a PBKDF2-HMAC-SHA256 hash for the password using
// a freshly generated random salt. Both return values are hex strings
// suitable for TEXT column storage.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return hashWithSalt(password, salt), salt, nil
}

// hashWithSalt derives the hex-encoded key for a password and an
// already-encoded salt.
func hashWithSalt(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword reports whether the password matches the stored hash
// and salt. The comparison is constant-time.
func VerifyPassword(password, hash, salt string) bool {
	candidate := hashWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}
