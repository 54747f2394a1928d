package util

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomHex generates a random hex string of n bytes (2n characters).
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
