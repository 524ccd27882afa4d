// Package x509write assembles PKCS#10 certificate signing requests
// and X.509 v3 certificates on top of package asn1write's reverse-order
// primitives, hashes the resulting to-be-signed structure, signs it
// through an injected crypto.Signer, and splices the signature into the
// final DER SEQUENCE.
package x509write

import (
	"crypto"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/ldvx/certforge/asn1write"
	"github.com/ldvx/certforge/pkidn"
	"github.com/ldvx/certforge/pkiext"
	"github.com/ldvx/certforge/pkikey"
	"github.com/pkg/errors"
)

// Sentinel errors for assembly-level failures not already covered by
// package asn1write's ErrBadInput/ErrUnknownOID/ErrBufTooSmall.
var (
	ErrNoSigner        = fmt.Errorf("x509write: no signer configured")
	ErrNoSubjectKey    = fmt.Errorf("x509write: no subject public key configured")
	ErrUnsupportedMD   = fmt.Errorf("x509write: unsupported hash algorithm for RSA signing")
	ErrInvalidValidity = fmt.Errorf("x509write: validity string must be 14 digits (optionally with a trailing Z)")
)

// tbsScratchSize matches the teacher's 2048-byte TBS staging buffer.
const tbsScratchSize = 2048

// OIDPKCS9ExtensionRequest is the CSR attribute OID for the extension
// request attribute (1.2.840.113549.1.9.14).
var OIDPKCS9ExtensionRequest = []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x09, 0x0E}

// sigOID maps an RSA signature hash to its sha*WithRSAEncryption OID,
// playing the role of the "OID resolver" collaborator from spec.md §6.
var sigOID = map[crypto.Hash][]byte{
	crypto.MD5:    {0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x04},
	crypto.SHA1:   {0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x05},
	crypto.SHA256: {0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0B},
	crypto.SHA384: {0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0C},
	crypto.SHA512: {0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0D},
}

func signatureOID(h crypto.Hash) ([]byte, error) {
	oid, ok := sigOID[h]
	if !ok {
		return nil, ErrUnsupportedMD
	}
	return oid, nil
}

// sign hashes tbs with h and produces a PKCS#1 v1.5 signature through
// signer. Per spec.md §1, the signer is invoked without a random
// callback: blinding is not this library's concern, so rand is nil.
func sign(signer crypto.Signer, h crypto.Hash, tbs []byte) ([]byte, error) {
	if signer == nil {
		return nil, ErrNoSigner
	}
	hasher := h.New()
	hasher.Write(tbs)
	digest := hasher.Sum(nil)

	sig, err := signer.Sign(nil, digest, h)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign")
	}
	return sig, nil
}

// writeSignature emits BIT STRING(0 unused bits) wrapping sig, preceded
// by its signature AlgorithmIdentifier.
func writeSignature(w *asn1write.Writer, h crypto.Hash, sig []byte) (int, error) {
	oid, err := signatureOID(h)
	if err != nil {
		return 0, err
	}

	var n int
	if _, err := w.PrependRaw(sig); err != nil {
		return 0, err
	}
	n += len(sig)
	if _, err := w.PrependRaw([]byte{0x00}); err != nil {
		return 0, err
	}
	n++
	if _, err := w.PrependLength(n); err != nil {
		return 0, err
	}
	n++
	if _, err := w.PrependTag(asn1write.TagBitString); err != nil {
		return 0, err
	}
	n++

	m, err := w.PrependAlgorithmIdentifier(oid)
	if err != nil {
		return 0, err
	}
	n += m
	return n, nil
}

// chooseTime emits a 15-byte "YYYYMMDDHHMMSSZ" validity string as
// UTCTime (13-byte YYMMDDHHMMSSZ payload) when the year falls in
// 2000-2049, else as GeneralizedTime with the full 15-byte payload.
func chooseTime(w *asn1write.Writer, validity [15]byte) (int, error) {
	if validity[0] == '2' && validity[1] == '0' && validity[2] < '5' {
		return w.PrependUTCTime(validity[2:])
	}
	return w.PrependGeneralizedTime(validity[:])
}

// normalizeValidity accepts either a 14-digit "YYYYMMDDHHMMSS" string
// or its 15-byte form with a trailing 'Z' already present, and returns
// the canonical 15-byte form.
func normalizeValidity(s string) ([15]byte, error) {
	var out [15]byte
	switch len(s) {
	case 14:
		copy(out[:14], s)
		out[14] = 'Z'
	case 15:
		if s[14] != 'Z' {
			return out, ErrInvalidValidity
		}
		copy(out[:], s)
	default:
		return out, ErrInvalidValidity
	}
	for i := 0; i < 14; i++ {
		if out[i] < '0' || out[i] > '9' {
			return out, ErrInvalidValidity
		}
	}
	return out, nil
}

// CSR holds the state needed to assemble a PKCS#10 CertificationRequest.
type CSR struct {
	subject    *pkidn.Name
	key        *rsa.PublicKey
	signer     crypto.Signer
	hash       crypto.Hash
	extensions pkiext.Store
}

// NewCSR returns a zero-valued CSR context, defaulting to SHA-256.
func NewCSR() *CSR {
	return &CSR{hash: crypto.SHA256}
}

// SetSubjectName parses subject ("CN=...,O=...") and replaces the
// context's subject DN. On error the subject is left empty, matching
// the source's free-before-build setter semantics.
func (c *CSR) SetSubjectName(subject string) error {
	c.subject = nil
	n, err := pkidn.Parse(subject)
	if err != nil {
		return err
	}
	c.subject = n
	return nil
}

// SetPublicKey sets the key being requested, which goes into the
// request's SubjectPublicKeyInfo. The signer is set separately with
// SetSigner; DER fails with ErrNoSigner when none is set.
func (c *CSR) SetPublicKey(pub *rsa.PublicKey) {
	c.key = pub
}

// SetSigner sets the collaborator used to produce the PKCS#1 v1.5
// signature over the CertificationRequestInfo.
func (c *CSR) SetSigner(signer crypto.Signer) {
	c.signer = signer
}

// SetHash selects the digest algorithm used both for hashing the TBS
// structure and for the signature AlgorithmIdentifier's OID.
func (c *CSR) SetHash(h crypto.Hash) {
	c.hash = h
}

// Extensions exposes the extension store so callers can attach
// KeyUsage, BasicConstraints, or arbitrary extensions before calling
// DER; they are carried in the CSR's extensionRequest attribute.
func (c *CSR) Extensions() *pkiext.Store {
	return &c.extensions
}

// DER builds and signs the CertificationRequestInfo, then returns the
// complete DER-encoded CertificationRequest.
func (c *CSR) DER() ([]byte, error) {
	if c.key == nil {
		return nil, ErrNoSubjectKey
	}
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if c.subject == nil {
		c.subject = &pkidn.Name{}
	}

	tbsBuf := make([]byte, tbsScratchSize)
	w := asn1write.NewWriter(tbsBuf)

	extLen, err := pkiext.WriteTo(w, &c.extensions)
	if err != nil {
		return nil, err
	}
	var attrsContentLen int
	if extLen > 0 {
		extSeqLen, err := w.PrependSequence(extLen)
		if err != nil {
			return nil, err
		}
		setLen, err := w.PrependSet(extSeqLen)
		if err != nil {
			return nil, err
		}
		oidLen, err := w.PrependOID(OIDPKCS9ExtensionRequest)
		if err != nil {
			return nil, err
		}
		attrsContentLen, err = w.PrependSequence(oidLen + setLen)
		if err != nil {
			return nil, err
		}
	}
	if _, err := w.PrependContextTag(0, attrsContentLen); err != nil {
		return nil, err
	}

	if _, err := pkikey.WriteSubjectPublicKeyInfo(w, c.key); err != nil {
		return nil, err
	}

	if _, err := pkidn.WriteTo(w, c.subject); err != nil {
		return nil, err
	}

	if _, err := w.PrependInt(0); err != nil {
		return nil, err
	}

	tbsLen := w.Len()
	if _, err := w.PrependSequence(tbsLen); err != nil {
		return nil, err
	}

	tbs := append([]byte(nil), w.Bytes()...)

	sig, err := sign(c.signer, c.hash, tbs)
	if err != nil {
		return nil, err
	}

	finalBuf := make([]byte, tbsScratchSize*2+len(sig)+256)
	fw := asn1write.NewWriter(finalBuf)

	if _, err := writeSignature(fw, c.hash, sig); err != nil {
		return nil, err
	}

	if _, err := fw.PrependRaw(tbs); err != nil {
		return nil, err
	}

	total := fw.Len()
	if _, err := fw.PrependSequence(total); err != nil {
		return nil, err
	}

	return append([]byte(nil), fw.Bytes()...), nil
}

// Certificate holds the state needed to assemble an X.509 v3
// Certificate; version is fixed at v3.
type Certificate struct {
	serial       *big.Int
	issuer       *pkidn.Name
	subject      *pkidn.Name
	issuerSigner crypto.Signer
	subjectKey   *rsa.PublicKey
	notBefore    [15]byte
	notAfter     [15]byte
	validitySet  bool
	hash         crypto.Hash
	extensions   pkiext.Store
}

// NewCertificate returns a zero-valued Certificate context, version
// fixed at v3 and defaulting to SHA-256.
func NewCertificate() *Certificate {
	return &Certificate{hash: crypto.SHA256}
}

// SetSerial copies serial into the context.
func (c *Certificate) SetSerial(serial *big.Int) {
	c.serial = new(big.Int).Set(serial)
}

// randomSerial derives a positive serial number from a random
// (version 4) UUID, for callers that never call SetSerial. The UUID's
// 16 bytes (122 random bits) stay within RFC 5280's 20-octet ceiling
// once DER's sign-padding is added.
func randomSerial() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}

// SetIssuerName parses issuer and replaces the context's issuer DN.
func (c *Certificate) SetIssuerName(issuer string) error {
	c.issuer = nil
	n, err := pkidn.Parse(issuer)
	if err != nil {
		return err
	}
	c.issuer = n
	return nil
}

// SetSubjectName parses subject and replaces the context's subject DN.
func (c *Certificate) SetSubjectName(subject string) error {
	c.subject = nil
	n, err := pkidn.Parse(subject)
	if err != nil {
		return err
	}
	c.subject = n
	return nil
}

// SetIssuerSigner sets the collaborator that signs the TBSCertificate.
func (c *Certificate) SetIssuerSigner(signer crypto.Signer) {
	c.issuerSigner = signer
}

// SetSubjectKey sets the public key that goes into the certificate's
// SubjectPublicKeyInfo.
func (c *Certificate) SetSubjectKey(pub *rsa.PublicKey) {
	c.subjectKey = pub
}

// SetHash selects the digest algorithm for hashing and signing.
func (c *Certificate) SetHash(h crypto.Hash) {
	c.hash = h
}

// SetValidity accepts notBefore/notAfter as either 14-digit
// "YYYYMMDDHHMMSS" strings or their 15-byte form with a trailing 'Z'.
func (c *Certificate) SetValidity(notBefore, notAfter string) error {
	nb, err := normalizeValidity(notBefore)
	if err != nil {
		return err
	}
	na, err := normalizeValidity(notAfter)
	if err != nil {
		return err
	}
	c.notBefore = nb
	c.notAfter = na
	c.validitySet = true
	return nil
}

// Extensions exposes the extension store for BasicConstraints,
// KeyUsage, NsCertType, SubjectKeyIdentifier, AuthorityKeyIdentifier,
// or arbitrary caller-supplied extensions.
func (c *Certificate) Extensions() *pkiext.Store {
	return &c.extensions
}

// DER builds TBSCertificate, signs it with the issuer signer, and
// returns the complete DER-encoded Certificate.
func (c *Certificate) DER() ([]byte, error) {
	if c.subjectKey == nil {
		return nil, ErrNoSubjectKey
	}
	if c.issuerSigner == nil {
		return nil, ErrNoSigner
	}
	if c.serial == nil {
		c.serial = randomSerial()
	}
	if !c.validitySet {
		return nil, ErrInvalidValidity
	}
	if c.issuer == nil {
		c.issuer = &pkidn.Name{}
	}
	if c.subject == nil {
		c.subject = &pkidn.Name{}
	}

	sigOIDBytes, err := signatureOID(c.hash)
	if err != nil {
		return nil, err
	}

	tbsBuf := make([]byte, tbsScratchSize)
	w := asn1write.NewWriter(tbsBuf)

	extLen, err := pkiext.WriteTo(w, &c.extensions)
	if err != nil {
		return nil, err
	}
	if extLen > 0 {
		extSeqLen, err := w.PrependSequence(extLen)
		if err != nil {
			return nil, err
		}
		if _, err := w.PrependContextTag(3, extSeqLen); err != nil {
			return nil, err
		}
	}

	if _, err := pkikey.WriteSubjectPublicKeyInfo(w, c.subjectKey); err != nil {
		return nil, err
	}

	if _, err := pkidn.WriteTo(w, c.subject); err != nil {
		return nil, err
	}

	var validLen int
	m, err := chooseTime(w, c.notAfter)
	if err != nil {
		return nil, err
	}
	validLen += m
	m, err = chooseTime(w, c.notBefore)
	if err != nil {
		return nil, err
	}
	validLen += m
	if _, err := w.PrependSequence(validLen); err != nil {
		return nil, err
	}

	if _, err := pkidn.WriteTo(w, c.issuer); err != nil {
		return nil, err
	}

	if _, err := w.PrependAlgorithmIdentifier(sigOIDBytes); err != nil {
		return nil, err
	}

	if _, err := w.PrependBigInt(c.serial); err != nil {
		return nil, err
	}

	versionLen, err := w.PrependInt(2)
	if err != nil {
		return nil, err
	}
	if _, err := w.PrependContextTag(0, versionLen); err != nil {
		return nil, err
	}

	tbsLen := w.Len()
	if _, err := w.PrependSequence(tbsLen); err != nil {
		return nil, err
	}

	tbs := append([]byte(nil), w.Bytes()...)

	sig, err := sign(c.issuerSigner, c.hash, tbs)
	if err != nil {
		return nil, err
	}

	finalBuf := make([]byte, tbsScratchSize*2+len(sig)+256)
	fw := asn1write.NewWriter(finalBuf)

	if _, err := writeSignature(fw, c.hash, sig); err != nil {
		return nil, err
	}

	if _, err := fw.PrependRaw(tbs); err != nil {
		return nil, err
	}

	total := fw.Len()
	if _, err := fw.PrependSequence(total); err != nil {
		return nil, err
	}

	return append([]byte(nil), fw.Bytes()...), nil
}
