// Package passwords hashes member passwords with scrypt and a random salt.
// Hash and salt are hex strings stored in separate columns.
package passwords

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	saltBytes = 16
	keyLen    = 64
	costN     = 16384
	costR     = 8
	costP     = 1
)

// Hash returns the hex scrypt digest of password and the hex salt used.
func Hash(password string) (hash, salt string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt failed: %w", err)
	}
	salt = hex.EncodeToString(raw)
	hash, err = derive(password, salt)
	if err != nil {
		return "", "", err
	}
	return hash, salt, nil
}

// Verify reports whether password matches the stored hash and salt.
func Verify(password, storedHash, storedSalt string) bool {
	if storedHash == "" || storedSalt == "" {
		return false
	}
	candidate, err := derive(password, storedSalt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// derive uses the salt's hex text as the scrypt salt bytes.
func derive(password, salt string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), costN, costR, costP, keyLen)
	if err != nil {
		return "", fmt.Errorf("derive password hash failed: %w", err)
	}
	return hex.EncodeToString(key), nil
}
