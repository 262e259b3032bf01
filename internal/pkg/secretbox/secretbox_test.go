package secretbox_test

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"caradmin/internal/pkg/secretbox"
)

func testBox(t *testing.T) *secretbox.Box {
	t.Helper()
	b, err := secretbox.New(bytes.Repeat([]byte{7}, secretbox.KeySize))
	require.NoError(t, err)
	return b
}

func TestSealOpen(t *testing.T) {
	b := testBox(t)

	s1, err := b.SealString("upstream-token")
	require.NoError(t, err)
	s2, err := b.SealString("upstream-token")
	require.NoError(t, err)
	require.NotEqual(t, s1, s2, "nonce must differ")

	out, err := b.OpenString(s1)
	require.NoError(t, err)
	require.Equal(t, "upstream-token", out)
}

func TestOpen_Tampered(t *testing.T) {
	b := testBox(t)
	sealed, err := b.SealString("x")
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = b.Open(sealed)
	require.ErrorIs(t, err, secretbox.ErrOpen)

	_, err = b.Open([]byte("short"))
	require.ErrorIs(t, err, secretbox.ErrOpen)
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := testBox(t).SealString("x")
	require.NoError(t, err)

	other, err := secretbox.New(bytes.Repeat([]byte{8}, secretbox.KeySize))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.ErrorIs(t, err, secretbox.ErrOpen)
}

func TestParseKey(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, secretbox.KeySize)

	k, err := secretbox.ParseKey(hex.EncodeToString(raw))
	require.NoError(t, err)
	require.Equal(t, raw, k)

	k, err = secretbox.ParseKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	require.Equal(t, raw, k)

	_, err = secretbox.ParseKey("too-short")
	require.ErrorIs(t, err, secretbox.ErrInvalidKey)

	_, err = secretbox.New([]byte("short"))
	require.ErrorIs(t, err, secretbox.ErrInvalidKey)

	require.Len(t, secretbox.DeriveKey("dev"), secretbox.KeySize)
}
