// Package cryptox implements the field-level encryption used for notes at
// rest.
//
// Every encrypted field is a single lowercase hex string:
//
//	hex(nonce[32]) || hex(sealed)
//
// where sealed is XChaCha20-Poly1305 output keyed by the process-wide key.
// The first 24 nonce bytes are the AEAD nonce and the whole 32-byte nonce is
// bound as additional data, so changing any character of the encoded value
// makes Decrypt fail.
package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the length of the secret key in bytes.
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the length of the stored nonce in bytes.
	NonceSize = 32

	nonceHexLen = NonceSize * 2
)

// Box encrypts and decrypts single text fields. A Box is safe for concurrent
// use. The zero value and a nil *Box are uninitialized and fail every call
// with common.ErrCrypto.
type Box struct {
	aead cipher.AEAD
}

// NewBox returns a Box keyed by key, which must be KeySize bytes long.
// The key bytes are copied; the caller may wipe its slice afterwards.
func NewBox(key []byte) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrCrypto, KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the encoded
// field. Errors match both common.ErrEncryption and common.ErrCrypto.
func (b *Box) Encrypt(plaintext string) (string, error) {
	if b == nil || b.aead == nil {
		return "", fmt.Errorf("%w: %w: key not initialized", common.ErrEncryption, common.ErrCrypto)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %w: nonce: %w", common.ErrEncryption, common.ErrCrypto, err)
	}

	sealed := b.aead.Seal(nil, nonce[:chacha20poly1305.NonceSizeX], []byte(plaintext), nonce)

	return hex.EncodeToString(nonce) + hex.EncodeToString(sealed), nil
}

// Decrypt opens an encoded field produced by Encrypt. It never returns
// partial output: any malformed, tampered or foreign-key input fails with an
// error matching common.ErrDecryption.
func (b *Box) Decrypt(encoded string) (string, error) {
	if b == nil || b.aead == nil {
		return "", fmt.Errorf("%w: %w: key not initialized", common.ErrDecryption, common.ErrCrypto)
	}
	if len(encoded) < nonceHexLen+2*b.aead.Overhead() {
		return "", fmt.Errorf("%w: input too short", common.ErrDecryption)
	}
	// hex.DecodeString accepts upper case too; Encrypt only emits lower case,
	// so anything else has been altered.
	if !isLowerHex(encoded) {
		return "", fmt.Errorf("%w: input is not lowercase hex", common.ErrDecryption)
	}

	nonce, err := hex.DecodeString(encoded[:nonceHexLen])
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %w", common.ErrDecryption, err)
	}
	sealed, err := hex.DecodeString(encoded[nonceHexLen:])
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %w", common.ErrDecryption, err)
	}

	plaintext, err := b.aead.Open(nil, nonce[:chacha20poly1305.NonceSizeX], sealed, nonce)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}
	return string(plaintext), nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
