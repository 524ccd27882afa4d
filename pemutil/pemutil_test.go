package pemutil

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pemRegexp = regexp.MustCompile(`^-----BEGIN CERTIFICATE-----\n([A-Za-z0-9+/=]{1,64}\n)+-----END CERTIFICATE-----\n\x00$`)

// go test -timeout 30s -run ^TestEncodeMatchesBannerRegexp$ github.com/ldvx/certforge/pemutil
func TestEncodeMatchesBannerRegexp(t *testing.T) {
	der := make([]byte, 300)
	for i := range der {
		der[i] = byte(i)
	}

	out := Encode(BannerCertificate, der)
	assert.Regexp(t, pemRegexp, string(out))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	der := []byte("arbitrary der payload, not really DER")

	out := Encode(BannerCertificateRequest, der)
	decoded, err := Decode(BannerCertificateRequest, out)
	require.NoError(t, err)
	assert.Equal(t, der, decoded)
}

func TestEncodeIntoBufTooSmall(t *testing.T) {
	der := make([]byte, 100)
	buf := make([]byte, 4)
	_, err := EncodeInto(buf, BannerPublicKey, der)
	assert.ErrorIs(t, err, ErrBufTooSmall)
}

func TestEncodeIntoSucceedsWithExactSize(t *testing.T) {
	der := make([]byte, 64)
	full := Encode(BannerRSAPrivateKey, der)
	buf := make([]byte, len(full))

	n, err := EncodeInto(buf, BannerRSAPrivateKey, der)
	require.NoError(t, err)
	assert.Equal(t, len(full), n)
	assert.Equal(t, full, buf[:n])
}
