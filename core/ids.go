package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"biketowork/utils"
)

// NewID generates a new ULID with the given prefix.
// The format is: prefix_ULID
// Example: core.NewID("r") returns "r_01G0EZ1XTM37C5X11SQTDNCTM1"
//
// IDs produced inside one process sort in creation order, including IDs
// created within the same millisecond.
func NewID(prefix string) string {
	utils.AssertInvariant(prefix != "" && strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	// ulid.Make draws from a process-wide monotonic entropy source
	id := ulid.Make()

	return strings.ToLower(strings.TrimSpace(prefix)) + "_" + id.String()
}

// IsValidULID checks if the given string is a valid ULID format with prefix.
// The format should be: prefix_ULID where ULID is 26 characters, base32 encoded.
func IsValidULID(id string) bool {
	prefix, ulidPart, found := strings.Cut(id, "_")
	if !found || prefix == "" || strings.Contains(ulidPart, "_") {
		return false
	}

	for _, r := range prefix {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	if len(ulidPart) != ulid.EncodedSize || strings.ToUpper(ulidPart) != ulidPart {
		return false
	}

	_, err := ulid.ParseStrict(ulidPart)
	return err == nil
}

// HasPrefix reports whether id is a valid ULID carrying the given prefix.
func HasPrefix(id, prefix string) bool {
	return IsValidULID(id) && strings.HasPrefix(id, strings.ToLower(prefix)+"_")
}

// NewSecretKey generates a new cryptographically secure secret key with the given prefix.
// The format is: prefix_base64EncodedRandomBytes
// Uses 32 random bytes for high entropy.
func NewSecretKey(prefix string) (string, error) {
	utils.AssertInvariant(prefix != "" && strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	secretBytes := make([]byte, 32)
	_, err := rand.Read(secretBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random secret key: %w", err)
	}

	secretKey := strings.ToLower(strings.TrimSpace(prefix)) + "_" + base64.URLEncoding.EncodeToString(secretBytes)
	return secretKey, nil
}
