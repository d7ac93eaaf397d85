package utils // package utils provides small shared helpers

import (
	"crypto/rand" // secure random number generation
	"encoding/hex"
)

// NewID returns a prefixed identifier such as "prod_9f2c..." built
// from 16 bytes of cryptographically secure randomness. The prefix
// keeps ids self-describing in logs and mirrors the shape of the
// subject ids issued by the identity provider.
func NewID(prefix string) string {
	raw, err := randomHex(16)
	if err != nil {
		// crypto/rand failing means the platform RNG is broken;
		// there is nothing sensible to fall back to.
		panic(err)
	}
	return prefix + "_" + raw
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
