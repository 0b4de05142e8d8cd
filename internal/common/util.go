package common

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source is unavailable.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it for passwords and key material once they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomID returns an n-character identifier drawn from [a-z0-9], the same
// shape the record backend uses for its record ids.
func RandomID(n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := range out {
		k, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = idAlphabet[k.Int64()]
	}
	return string(out), nil
}
