package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// Header is the conventional HTTP header carrying the signature
	Header = "X-Hub-Signature-256"

	// Prefix is the algorithm tag preceding the hex digest
	Prefix = "sha256="
)

// ErrInvalidFormat is returned when the header value does not carry the
// expected algorithm tag.
var ErrInvalidFormat = fmt.Errorf("invalid signature format, expected '%s<hex digest>'", Prefix)

// Sign computes the hex HMAC-SHA256 digest of the canonical payload bytes.
func Sign(secret string, canonical []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildHeader builds the full header value for the given digest.
func BuildHeader(digest string) string {
	return Prefix + digest
}

// ParseHeader extracts the hex digest from a header value.
// The algorithm tag must match exactly; anything else is ErrInvalidFormat.
func ParseHeader(value string) (string, error) {
	if !strings.HasPrefix(value, Prefix) {
		return "", ErrInvalidFormat
	}
	return strings.TrimPrefix(value, Prefix), nil
}

// Verify checks a hex digest against the expected HMAC of the canonical
// bytes using constant-time comparison.
func Verify(secret string, canonical []byte, digest string) bool {
	provided, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	expected := mac.Sum(nil)

	// hmac.Equal is constant time, preventing timing attacks.
	return hmac.Equal(provided, expected)
}
