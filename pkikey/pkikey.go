// Package pkikey emits PKCS#1 RSA public/private keys and the
// SubjectPublicKeyInfo wrapper used by CSRs and certificates.
package pkikey

import (
	"crypto/rsa"
	"math/big"

	"github.com/ldvx/certforge/asn1write"
)

// OIDRSAEncryption is the PKCS#1 rsaEncryption OID (1.2.840.113549.1.1.1).
var OIDRSAEncryption = []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x01}

// WriteRSAPublicKey emits SEQUENCE { n INTEGER, e INTEGER } for the
// given key, the bare PKCS#1 RSAPublicKey with no SPKI wrapping.
func WriteRSAPublicKey(w *asn1write.Writer, pub *rsa.PublicKey) (int, error) {
	var n int

	m, err := w.PrependInt(pub.E)
	if err != nil {
		return 0, err
	}
	n += m

	m, err = w.PrependBigInt(pub.N)
	if err != nil {
		return 0, err
	}
	n += m

	return w.PrependSequence(n)
}

// WriteSubjectPublicKeyInfo emits SEQUENCE { AlgorithmIdentifier(
// rsaEncryption, NULL), BIT STRING wrapping RSAPublicKey } with zero
// unused bits.
func WriteSubjectPublicKeyInfo(w *asn1write.Writer, pub *rsa.PublicKey) (int, error) {
	pubLen, err := WriteRSAPublicKey(w, pub)
	if err != nil {
		return 0, err
	}

	// The RSAPublicKey TLV is already written below the cursor; the BIT
	// STRING just needs a single 0x00 "unused bits" octet in front of
	// it, then its own tag/length wrapping pubLen+1 bytes.
	if _, err := w.PrependRaw([]byte{0x00}); err != nil {
		return 0, err
	}
	bitContentLen := pubLen + 1

	lenLen, err := w.PrependLength(bitContentLen)
	if err != nil {
		return 0, err
	}
	if _, err := w.PrependTag(asn1write.TagBitString); err != nil {
		return 0, err
	}

	total := 1 + lenLen + bitContentLen

	algLen, err := w.PrependAlgorithmIdentifier(OIDRSAEncryption)
	if err != nil {
		return 0, err
	}
	total += algLen

	return w.PrependSequence(total)
}

// WriteRSAPrivateKey emits the PKCS#1 RSAPrivateKey SEQUENCE: version
// (0), n, e, d, p, q, dp, dq, qinv, in that order, with no SPKI
// wrapping. It calls key.Precompute itself so that the CRT parameters
// are available; a key with other than two primes is rejected with
// asn1write.ErrBadInput.
func WriteRSAPrivateKey(w *asn1write.Writer, key *rsa.PrivateKey) (int, error) {
	if len(key.Primes) != 2 {
		return 0, asn1write.ErrBadInput
	}
	key.Precompute()

	var n int
	fields := []*big.Int{
		key.Precomputed.Qinv,
		key.Precomputed.Dq,
		key.Precomputed.Dp,
		key.Primes[1], // q
		key.Primes[0], // p
		key.D,
		big.NewInt(int64(key.PublicKey.E)),
		key.N,
	}
	for _, f := range fields {
		m, err := w.PrependBigInt(f)
		if err != nil {
			return 0, err
		}
		n += m
	}

	m, err := w.PrependInt(0)
	if err != nil {
		return 0, err
	}
	n += m

	return w.PrependSequence(n)
}
