package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns a URL-safe string carrying the given number of
// random bytes. Used for bearer token values and nonces.
func RandomString(bytes int) string {
	b := make([]byte, bytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
