package cryptox

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey stretches a passphrase into a KeySize key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// ParseKey turns the operator-entered secret into key material.
//
// A secret of exactly 64 hex characters is used as the raw key. Anything
// else is treated as a passphrase and run through DeriveMasterKey with salt,
// which must then be non-empty. The secret slice is wiped before returning.
func ParseKey(secret []byte, salt []byte) ([]byte, error) {
	defer common.WipeByteArray(secret)

	s := bytes.TrimSpace(secret)
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty key", common.ErrCrypto)
	}

	if len(s) == KeySize*2 {
		key := make([]byte, KeySize)
		if _, err := hex.Decode(key, s); err == nil {
			return key, nil
		}
		common.WipeByteArray(key)
	}

	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: passphrase keys need a salt", common.ErrCrypto)
	}
	return DeriveMasterKey(s, salt), nil
}
