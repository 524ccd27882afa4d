package x509write

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return key
}

// go test -timeout 30s -run ^TestCSRRoundTripsThroughStdlib$ github.com/ldvx/certforge/x509write
func TestCSRRoundTripsThroughStdlib(t *testing.T) {
	key := testKey(t)

	csr := NewCSR()
	require.NoError(t, csr.SetSubjectName("CN=leaf.example.com,O=Example Co"))
	csr.SetPublicKey(&key.PublicKey)
	csr.SetSigner(key)
	csr.SetHash(crypto.SHA256)
	require.NoError(t, csr.Extensions().KeyUsage(true, 0xA0))

	der, err := csr.DER()
	require.NoError(t, err)
	require.NotEmpty(t, der)

	parsed, err := x509.ParseCertificateRequest(der)
	require.NoError(t, err)
	assert.Equal(t, "leaf.example.com", parsed.Subject.CommonName)
	assert.Equal(t, []string{"Example Co"}, parsed.Subject.Organization)
	assert.NoError(t, parsed.CheckSignature())
}

func TestCSRMissingSignerFails(t *testing.T) {
	key := testKey(t)
	csr := NewCSR()
	csr.SetPublicKey(&key.PublicKey)
	_, err := csr.DER()
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestCSRMissingPublicKeyFails(t *testing.T) {
	key := testKey(t)
	csr := NewCSR()
	csr.SetSigner(key)
	_, err := csr.DER()
	assert.ErrorIs(t, err, ErrNoSubjectKey)
}

func TestCertificateRoundTripsThroughStdlib(t *testing.T) {
	caKey := testKey(t)
	leafKey := testKey(t)

	cert := NewCertificate()
	require.NoError(t, cert.SetIssuerName("CN=Test CA,O=Example Co"))
	require.NoError(t, cert.SetSubjectName("CN=leaf.example.com,O=Example Co"))
	cert.SetSerial(big.NewInt(12345))
	cert.SetSubjectKey(&leafKey.PublicKey)
	cert.SetIssuerSigner(caKey)
	cert.SetHash(crypto.SHA256)
	require.NoError(t, cert.SetValidity("20200101000000", "20301231235959"))
	require.NoError(t, cert.Extensions().BasicConstraints(true, false, -1))

	der, err := cert.DER()
	require.NoError(t, err)
	require.NotEmpty(t, der)

	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	assert.Equal(t, "leaf.example.com", parsed.Subject.CommonName)
	assert.Equal(t, "Test CA", parsed.Issuer.CommonName)
	assert.Equal(t, big.NewInt(12345), parsed.SerialNumber)
	assert.False(t, parsed.IsCA)
	// Signed by caKey, so verify against the CA's public key, not the
	// certificate's own (leaf) key.
	issuer := &x509.Certificate{PublicKey: &caKey.PublicKey, PublicKeyAlgorithm: x509.RSA}
	assert.NoError(t, parsed.CheckSignatureFrom(issuer))
}

func TestCertificateChoosesUTCTimeBeforeY2050(t *testing.T) {
	caKey := testKey(t)
	leafKey := testKey(t)

	cert := NewCertificate()
	cert.SetSerial(big.NewInt(1))
	cert.SetSubjectKey(&leafKey.PublicKey)
	cert.SetIssuerSigner(caKey)
	require.NoError(t, cert.SetValidity("20200101000000Z", "20301231235959Z"))

	der, err := cert.DER()
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	assert.Equal(t, 2020, parsed.NotBefore.Year())
	assert.Equal(t, 2030, parsed.NotAfter.Year())
	// UTCTime: tag 0x17, 13-byte YYMMDDHHMMSSZ payload.
	assert.Contains(t, string(parsed.RawTBSCertificate), "\x17\x0d200101000000Z")
	assert.Contains(t, string(parsed.RawTBSCertificate), "\x17\x0d301231235959Z")
}

func TestCertificateDefaultsSerialWhenOmitted(t *testing.T) {
	caKey := testKey(t)
	leafKey := testKey(t)

	cert := NewCertificate()
	cert.SetSubjectKey(&leafKey.PublicKey)
	cert.SetIssuerSigner(caKey)
	require.NoError(t, cert.SetValidity("20200101000000", "20301231235959"))

	der, err := cert.DER()
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	assert.NotZero(t, parsed.SerialNumber.Sign())
}

func TestCertificateMissingValidityFails(t *testing.T) {
	caKey := testKey(t)
	leafKey := testKey(t)

	cert := NewCertificate()
	cert.SetSerial(big.NewInt(1))
	cert.SetSubjectKey(&leafKey.PublicKey)
	cert.SetIssuerSigner(caKey)

	_, err := cert.DER()
	assert.ErrorIs(t, err, ErrInvalidValidity)
}

func TestNormalizeValidityRejectsBadLength(t *testing.T) {
	_, err := normalizeValidity("2020")
	assert.ErrorIs(t, err, ErrInvalidValidity)
}

func TestNormalizeValidityRejectsNonDigits(t *testing.T) {
	_, err := normalizeValidity("2020AA01000000")
	assert.ErrorIs(t, err, ErrInvalidValidity)
}
