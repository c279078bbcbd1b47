package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// APIKeyPrefix starts every generated API key.
const APIKeyPrefix = "sk_"

// apiKeyHexLen is the number of hex characters after the prefix.
const apiKeyHexLen = 40

// GenerateAPIKey returns a new credential: "sk_" followed by the first 40
// hex characters of the SHA-256 of a random UUID.
func GenerateAPIKey() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return APIKeyPrefix + hex.EncodeToString(sum[:])[:apiKeyHexLen]
}

// MaskAPIKey returns key with all but the prefix and last four characters
// hidden, for logs and listings.
func MaskAPIKey(key string) string {
	if len(key) <= len(APIKeyPrefix)+8 {
		return "***"
	}
	return key[:len(APIKeyPrefix)+4] + "..." + key[len(key)-4:]
}
