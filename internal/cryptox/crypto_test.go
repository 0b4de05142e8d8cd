package cryptox

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestBox(t testing.TB) *Box {
	t.Helper()
	b, err := NewBox(common.GenerateRandByteArray(KeySize))
	require.NoError(t, err)
	return b
}

func TestNewBox_RejectsWrongKeySize(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := NewBox(make([]byte, n))
		assert.ErrorIs(t, err, common.ErrCrypto, "size %d", n)
	}
}

func TestBox_RoundTrip(t *testing.T) {
	b := newTestBox(t)

	rapid.Check(t, func(t *rapid.T) {
		plain := rapid.String().Draw(t, "plain")

		enc, err := b.Encrypt(plain)
		require.NoError(t, err)

		got, err := b.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})
}

func TestBox_EncodingShape(t *testing.T) {
	b := newTestBox(t)

	enc, err := b.Encrypt("hello")
	require.NoError(t, err)

	assert.Equal(t, strings.ToLower(enc), enc)
	_, err = hex.DecodeString(enc)
	require.NoError(t, err)
	// nonce + plaintext + tag
	assert.Len(t, enc, 2*(NonceSize+len("hello")+16))
}

func TestBox_FreshNoncePerCall(t *testing.T) {
	b := newTestBox(t)

	a, err := b.Encrypt("same")
	require.NoError(t, err)
	c, err := b.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a[:2*NonceSize], c[:2*NonceSize])
}

func TestBox_EmptyPlaintext(t *testing.T) {
	b := newTestBox(t)

	enc, err := b.Encrypt("")
	require.NoError(t, err)

	got, err := b.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBox_AnyMutationFails(t *testing.T) {
	b := newTestBox(t)

	rapid.Check(t, func(t *rapid.T) {
		plain := rapid.StringN(0, 40, -1).Draw(t, "plain")
		enc, err := b.Encrypt(plain)
		require.NoError(t, err)

		pos := rapid.IntRange(0, len(enc)-1).Draw(t, "pos")
		repl := rapid.SampledFrom([]byte("0123456789abcdef")).
			Filter(func(c byte) bool { return c != enc[pos] }).
			Draw(t, "repl")

		mutated := []byte(enc)
		mutated[pos] = repl

		_, err = b.Decrypt(string(mutated))
		assert.ErrorIs(t, err, common.ErrDecryption)
	})
}

func TestBox_DecryptMalformed(t *testing.T) {
	b := newTestBox(t)
	valid, err := b.Encrypt("x")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"nonce only", valid[:2*NonceSize]},
		{"truncated", valid[:len(valid)-2]},
		{"odd length", valid + "0"},
		{"upper case", strings.ToUpper(valid)},
		{"non hex", "zz" + valid[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Decrypt(tt.input)
			assert.ErrorIs(t, err, common.ErrDecryption)
		})
	}
}

func TestBox_WrongKeyFails(t *testing.T) {
	a := newTestBox(t)
	other := newTestBox(t)

	enc, err := a.Encrypt("secret note")
	require.NoError(t, err)

	_, err = other.Decrypt(enc)
	assert.ErrorIs(t, err, common.ErrDecryption)
}

func TestBox_Uninitialized(t *testing.T) {
	var nilBox *Box
	_, err := nilBox.Encrypt("x")
	assert.ErrorIs(t, err, common.ErrCrypto)
	assert.ErrorIs(t, err, common.ErrEncryption)

	_, err = (&Box{}).Decrypt("00")
	assert.ErrorIs(t, err, common.ErrCrypto)
	assert.ErrorIs(t, err, common.ErrDecryption)
}

func TestBox_KeyCopiedAtConstruction(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	b, err := NewBox(key)
	require.NoError(t, err)

	enc, err := b.Encrypt("kept")
	require.NoError(t, err)

	common.WipeByteArray(key)

	got, err := b.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "kept", got)
	assert.True(t, bytes.Equal(key, make([]byte, KeySize)))
}
