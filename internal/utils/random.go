package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomString returns a hex string of the given length, suitable for
// CSRF state tokens and other short-lived secrets.
func RandomString(length int) string {
	bytes := make([]byte, (length+1)/2)
	_, err := rand.Read(bytes)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
