package asn1write

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -timeout 30s -run ^TestPrependLengthForms$ github.com/ldvx/certforge/asn1write
func TestPrependLengthForms(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{255, []byte{0x81, 0xff}},
		{256, []byte{0x82, 0x01, 0x00}},
		{65535, []byte{0x82, 0xff, 0xff}},
		{65536, []byte{0x83, 0x01, 0x00, 0x00}},
	}

	for _, c := range cases {
		buf := make([]byte, 8)
		w := NewWriter(buf)
		n, err := w.PrependLength(c.n)
		require.NoError(t, err)
		assert.Equal(t, len(c.want), n)
		assert.Equal(t, c.want, w.Bytes())
	}
}

func TestPrependLengthBufTooSmall(t *testing.T) {
	buf := make([]byte, 1)
	w := NewWriter(buf)
	_, err := w.PrependLength(65536)
	assert.ErrorIs(t, err, ErrBufTooSmall)
}

func TestPrependBoolean(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	n, err := w.PrependBoolean(true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x01, 0xFF}, w.Bytes())

	buf = make([]byte, 8)
	w = NewWriter(buf)
	_, err = w.PrependBoolean(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x00}, w.Bytes())
}

func TestPrependIntLeadingZero(t *testing.T) {
	// 0x80 has its high bit set so a leading 0x00 must be inserted.
	buf := make([]byte, 8)
	w := NewWriter(buf)
	_, err := w.PrependInt(0x80)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x02, 0x00, 0x80}, w.Bytes())

	buf = make([]byte, 8)
	w = NewWriter(buf)
	_, err = w.PrependInt(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x00}, w.Bytes())

	buf = make([]byte, 8)
	w = NewWriter(buf)
	_, err = w.PrependInt(-1)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestPrependBigInt(t *testing.T) {
	buf := make([]byte, 16)
	w := NewWriter(buf)
	v := big.NewInt(0x8001)
	_, err := w.PrependBigInt(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x03, 0x00, 0x80, 0x01}, w.Bytes())
}

// go test -timeout 30s -run ^TestPrependBitString$ github.com/ldvx/certforge/asn1write
func TestPrependBitString(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	n, err := w.PrependBitString([]byte{0x00}, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0x03, 0x02, 0x01, 0x00}, w.Bytes())

	buf = make([]byte, 8)
	w = NewWriter(buf)
	_, err = w.PrependBitString([]byte{0x00}, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x02, 0x00, 0x00}, w.Bytes())
}

func TestPrependOctetStringAndOID(t *testing.T) {
	buf := make([]byte, 16)
	w := NewWriter(buf)
	_, err := w.PrependOctetString([]byte{0xAA, 0xBB})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x02, 0xAA, 0xBB}, w.Bytes())

	buf = make([]byte, 16)
	w = NewWriter(buf)
	// commonName OID 2.5.4.3 encoded payload
	_, err = w.PrependOID([]byte{0x55, 0x04, 0x03})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0x03, 0x55, 0x04, 0x03}, w.Bytes())
}

func TestPrependSequenceNesting(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)
	inner, err := w.PrependInt(0)
	require.NoError(t, err)
	total, err := w.PrependSequence(inner)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x03, 0x02, 0x01, 0x00}, w.Bytes())
	assert.Equal(t, len(w.Bytes()), total)
}

func TestPrependAlgorithmIdentifier(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)
	oid := []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01} // rsaEncryption
	_, err := w.PrependAlgorithmIdentifier(oid)
	require.NoError(t, err)
	want := append([]byte{0x30, 0x0d, 0x06, 0x09}, oid...)
	want = append(want, 0x05, 0x00)
	assert.Equal(t, want, w.Bytes())
}

func TestBufferUnderflowIsSelfDetecting(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)
	_, err := w.PrependOctetString([]byte{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, ErrBufTooSmall)
}
