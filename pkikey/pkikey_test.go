package pkikey

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/ldvx/certforge/asn1write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return key
}

// go test -timeout 30s -run ^TestWriteRSAPublicKeyIsSequenceOfTwoIntegers$ github.com/ldvx/certforge/pkikey
func TestWriteRSAPublicKeyIsSequenceOfTwoIntegers(t *testing.T) {
	key := testKey(t)
	buf := make([]byte, 256)
	w := asn1write.NewWriter(buf)

	n, err := WriteRSAPublicKey(w, &key.PublicKey)
	require.NoError(t, err)
	out := w.Bytes()

	assert.Equal(t, n, len(out))
	assert.Equal(t, asn1write.Constructed|asn1write.TagSequence, out[0])
}

func TestWriteSubjectPublicKeyInfoHasZeroUnusedBits(t *testing.T) {
	key := testKey(t)
	buf := make([]byte, 512)
	w := asn1write.NewWriter(buf)

	_, err := WriteSubjectPublicKeyInfo(w, &key.PublicKey)
	require.NoError(t, err)
	out := w.Bytes()

	assert.Equal(t, asn1write.Constructed|asn1write.TagSequence, out[0])
	// Locate the BIT STRING tag and confirm its first content byte (the
	// unused-bits octet) is zero.
	idx := -1
	for i, b := range out {
		if b == asn1write.TagBitString {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx)
	lenOctets := 1
	if out[idx+1]&0x80 != 0 {
		lenOctets += int(out[idx+1] & 0x7f)
	}
	assert.Equal(t, byte(0x00), out[idx+1+lenOctets])
}

func TestWriteRSAPrivateKeyVersionIsZero(t *testing.T) {
	key := testKey(t)
	buf := make([]byte, 1024)
	w := asn1write.NewWriter(buf)

	_, err := WriteRSAPrivateKey(w, key)
	require.NoError(t, err)
	out := w.Bytes()

	assert.Equal(t, asn1write.Constructed|asn1write.TagSequence, out[0])
	// version INTEGER 0 is the first element inside the SEQUENCE.
	// out[0]=tag, out[1..]=length bytes (long form: a 1024-bit key's
	// content is well over 127 bytes), followed by 02 01 00.
	assert.Contains(t, string(out), "\x02\x01\x00")
}

func TestWriteRSAPublicKeyBufTooSmall(t *testing.T) {
	key := testKey(t)
	buf := make([]byte, 4)
	w := asn1write.NewWriter(buf)
	_, err := WriteRSAPublicKey(w, &key.PublicKey)
	assert.ErrorIs(t, err, asn1write.ErrBufTooSmall)
}
