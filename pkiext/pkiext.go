// Package pkiext implements the X.509v3 extension store: an ordered,
// OID-keyed set of (critical, DER value) pairs plus helpers that build
// the five extensions this library knows how to construct directly.
package pkiext

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is the mandated digest for RFC 5280 key identifiers, not a security boundary here.

	"github.com/ldvx/certforge/asn1write"
)

// Well-known extension OIDs, DER-encoded payloads.
var (
	OIDBasicConstraints       = []byte{0x55, 0x1D, 0x13} // 2.5.29.19
	OIDKeyUsage               = []byte{0x55, 0x1D, 0x0F} // 2.5.29.15
	OIDNsCertType             = []byte{0x60, 0x86, 0x48, 0x01, 0x86, 0xF8, 0x42, 0x01, 0x01}
	OIDSubjectKeyIdentifier   = []byte{0x55, 0x1D, 0x0E} // 2.5.29.14
	OIDAuthorityKeyIdentifier = []byte{0x55, 0x1D, 0x23} // 2.5.29.35
)

// entry holds one extension value and its critical flag. Keeping the
// flag alongside the value rather than packed into the value's first
// byte (as the original C source does to share one allocation) has no
// behavioral effect; callers never observe the storage layout.
type entry struct {
	oid      []byte
	critical bool
	value    []byte
}

func oidEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Store is an OID-keyed set of extensions, at most one entry per OID.
// Order of insertion is preserved for emission, and setting an OID a
// second time replaces the entry in place rather than appending.
type Store struct {
	entries []*entry
}

// Set installs or replaces the extension for oid.
func (s *Store) Set(oid []byte, critical bool, value []byte) {
	for _, e := range s.entries {
		if oidEqual(e.oid, oid) {
			e.critical = critical
			e.value = value
			return
		}
	}
	s.entries = append(s.entries, &entry{oid: oid, critical: critical, value: value})
}

// Len reports how many distinct extensions are stored.
func (s *Store) Len() int {
	return len(s.entries)
}

// WriteTo emits one Extension SEQUENCE per stored entry, without the
// enclosing Extensions SEQUENCE (callers add that wrapping). Entries are
// prepended in insertion order, so in the encoded bytes the most
// recently inserted extension comes first.
func WriteTo(w *asn1write.Writer, s *Store) (int, error) {
	var total int
	for _, e := range s.entries {
		n, err := writeExtension(w, e)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func writeExtension(w *asn1write.Writer, e *entry) (int, error) {
	var n int

	m, err := w.PrependOctetString(e.value)
	if err != nil {
		return 0, err
	}
	n += m

	if e.critical {
		m, err = w.PrependBoolean(true)
		if err != nil {
			return 0, err
		}
		n += m
	}

	m, err = w.PrependOID(e.oid)
	if err != nil {
		return 0, err
	}
	n += m

	m, err = w.PrependSequence(n)
	if err != nil {
		return 0, err
	}
	return m, nil
}

// BasicConstraints builds the BasicConstraints extension value
// (SEQUENCE { [BOOLEAN cA]? [INTEGER pathLenConstraint]? }) and sets it
// on s. critical is caller-controlled: RFC 5280 requires it TRUE on CA
// certificates, unlike the original helper this is ported from, which
// always emitted it non-critical.
func (s *Store) BasicConstraints(critical, isCA bool, maxPathLen int) error {
	if isCA && maxPathLen > 127 {
		return asn1write.ErrBadInput
	}

	buf := make([]byte, 16)
	w := asn1write.NewWriter(buf)
	var n int

	if isCA {
		if maxPathLen >= 0 {
			m, err := w.PrependInt(maxPathLen)
			if err != nil {
				return err
			}
			n += m
		}
		m, err := w.PrependBoolean(true)
		if err != nil {
			return err
		}
		n += m
	}

	total, err := w.PrependSequence(n)
	if err != nil {
		return err
	}

	value := make([]byte, total)
	copy(value, w.Bytes())
	s.Set(OIDBasicConstraints, critical, value)
	return nil
}

// KeyUsage builds the KeyUsage BIT STRING (one octet, 7 meaningful
// bits, unused=1) from the KeyUsage bit flags in b and sets it.
func (s *Store) KeyUsage(critical bool, b byte) error {
	buf := make([]byte, 8)
	w := asn1write.NewWriter(buf)
	n, err := w.PrependBitString([]byte{b}, 7)
	if err != nil {
		return err
	}
	value := make([]byte, n)
	copy(value, w.Bytes())
	s.Set(OIDKeyUsage, critical, value)
	return nil
}

// NsCertType builds the Netscape NsCertType BIT STRING (one octet, 8
// meaningful bits, unused=0) and sets it.
func (s *Store) NsCertType(critical bool, b byte) error {
	buf := make([]byte, 8)
	w := asn1write.NewWriter(buf)
	n, err := w.PrependBitString([]byte{b}, 8)
	if err != nil {
		return err
	}
	value := make([]byte, n)
	copy(value, w.Bytes())
	s.Set(OIDNsCertType, critical, value)
	return nil
}

// SubjectKeyIdentifier sets an OCTET STRING wrapping the SHA-1 digest
// of the DER-encoded RSAPublicKey pubKeyDER (the caller passes the
// already-encoded RSAPublicKey, from package pkikey).
func (s *Store) SubjectKeyIdentifier(pubKeyDER []byte) error {
	digest := sha1.Sum(pubKeyDER)

	buf := make([]byte, 32)
	w := asn1write.NewWriter(buf)
	n, err := w.PrependOctetString(digest[:])
	if err != nil {
		return err
	}
	value := make([]byte, n)
	copy(value, w.Bytes())
	s.Set(OIDSubjectKeyIdentifier, false, value)
	return nil
}

// AuthorityKeyIdentifier sets SEQUENCE { [0] OCTET STRING
// SHA-1(issuerPubKeyDER) }, emitting only the keyIdentifier field.
func (s *Store) AuthorityKeyIdentifier(issuerPubKeyDER []byte) error {
	digest := sha1.Sum(issuerPubKeyDER)

	buf := make([]byte, 32)
	w := asn1write.NewWriter(buf)
	n, err := w.PrependOctetString(digest[:])
	if err != nil {
		return err
	}
	// Re-tag the OCTET STRING as [0] IMPLICIT.
	raw := w.Bytes()
	raw[0] = asn1write.ContextSpecific | 0

	seqBuf := make([]byte, 32)
	sw := asn1write.NewWriter(seqBuf)
	m, err := sw.PrependRaw(raw[:n])
	if err != nil {
		return err
	}
	total, err := sw.PrependSequence(m)
	if err != nil {
		return err
	}

	value := make([]byte, total)
	copy(value, sw.Bytes())
	s.Set(OIDAuthorityKeyIdentifier, false, value)
	return nil
}
