package accesscode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// codeSpan covers the 6-digit range [100000, 999999].
const (
	codeMin  = 100000
	codeSpan = 900000
)

// GenerateCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. The code is a human-typeable fallback identifier, not
// the security boundary; the token is.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to draw code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// GenerateToken returns a 128-bit hex-encoded opaque token suitable for
// embedding in a QR payload.
func GenerateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to draw token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hasher derives storable fingerprints from plaintext tokens using
// HMAC-SHA256 with a process-wide secret. The secret is loaded once at
// startup and never logged.
type Hasher struct {
	secret []byte
}

// NewHasher creates a Hasher. An empty secret is a configuration error:
// the subsystem must refuse to issue or verify codes without a key.
func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, fmt.Errorf("access code secret is not configured")
	}
	return &Hasher{secret: []byte(secret)}, nil
}

// Hash returns the hex HMAC-SHA256 digest of a token. Same (token, secret)
// always yields the same digest.
func (h *Hasher) Hash(token string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest for a caller-supplied token and compares it
// to a stored fingerprint in constant time.
func (h *Hasher) Verify(token, digest string) bool {
	return hmac.Equal([]byte(h.Hash(token)), []byte(digest))
}
