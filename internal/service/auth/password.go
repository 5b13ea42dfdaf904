package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters; key and salt sizes match the stored "hex(key).hex(salt)"
// format so existing user documents keep working.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword derives an scrypt hash and returns it as "hex(key).hex(salt)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// ComparePassword checks a supplied password against a stored hash in
// constant time.
func ComparePassword(supplied, stored string) (bool, error) {
	hashed, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false, fmt.Errorf("malformed password hash")
	}

	storedKey, err := hex.DecodeString(hashed)
	if err != nil {
		return false, fmt.Errorf("decode stored key: %w", err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	suppliedKey, err := scrypt.Key([]byte(supplied), salt, scryptN, scryptR, scryptP, len(storedKey))
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}

	return subtle.ConstantTimeCompare(storedKey, suppliedKey) == 1, nil
}
