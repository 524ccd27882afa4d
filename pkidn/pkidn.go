// Package pkidn parses "KEY=value,KEY=value" subject/issuer strings
// into an ordered attribute chain and emits the RFC 5280 RDNSequence
// DER encoding for it.
package pkidn

import (
	"strings"

	"github.com/ldvx/certforge/asn1write"
)

// Attribute OIDs, DER-encoded payloads (tag/length omitted).
var (
	oidCommonName             = []byte{0x55, 0x04, 0x03}             // 2.5.4.3
	oidCountryName            = []byte{0x55, 0x04, 0x06}             // 2.5.4.6
	oidOrganizationName       = []byte{0x55, 0x04, 0x0A}             // 2.5.4.10
	oidOrganizationalUnitName = []byte{0x55, 0x04, 0x0B}             // 2.5.4.11
	oidLocalityName           = []byte{0x55, 0x04, 0x07}             // 2.5.4.7
	oidStateOrProvinceName    = []byte{0x55, 0x04, 0x08}             // 2.5.4.8
	oidPKCS9Email             = []byte{0x2A, 0x86, 0x48, 0x86, 0xF7, // 1.2.840.113549.1.9.1
		0x0D, 0x01, 0x09, 0x01}
)

var tagToOID = map[string][]byte{
	"CN": oidCommonName,
	"C":  oidCountryName,
	"O":  oidOrganizationName,
	"OU": oidOrganizationalUnitName,
	"L":  oidLocalityName,
	"ST": oidStateOrProvinceName,
	"R":  oidPKCS9Email,
}

// Attribute is a single (OID, value) pair inside a distinguished name.
type Attribute struct {
	OID   []byte
	Value string
}

func (a Attribute) isEmail() bool {
	return string(a.OID) == string(oidPKCS9Email)
}

// Name is an ordered set of Attributes, head-to-tail in emission order.
type Name struct {
	Attrs []Attribute
}

// Parse builds a Name from a comma-separated "TAG=VALUE" string. Each
// token is prepended to Attrs, so Attrs holds the attributes in reverse
// input order; WriteTo prepends them in Attrs order through the
// reverse-order writer, so the encoded RDNSequence lists them in input
// order (the first token's RDN comes first).
//
// Parse builds a fresh Name on every call; on any error it returns
// (nil, err) and no partially built Name.
func Parse(subject string) (*Name, error) {
	n := &Name{}
	if subject == "" {
		return n, nil
	}

	for _, token := range strings.Split(subject, ",") {
		eq := strings.IndexByte(token, '=')
		if eq < 0 {
			return nil, asn1write.ErrBadInput
		}
		tag := token[:eq]
		value := token[eq+1:]

		oid, ok := tagToOID[tag]
		if !ok {
			return nil, asn1write.ErrUnknownOID
		}
		if len(value) > 127 {
			return nil, asn1write.ErrBadInput
		}

		n.Attrs = append([]Attribute{{OID: oid, Value: value}}, n.Attrs...)
	}

	return n, nil
}

// WriteTo emits the RDNSequence for n into w: for each attribute (in
// chain order, which prepends last-first so the final bytes reflect
// head-to-tail emission), SET OF { SEQUENCE { OID, value } }, wrapped
// in an outer SEQUENCE.
func WriteTo(w *asn1write.Writer, n *Name) (int, error) {
	var total int

	for _, attr := range n.Attrs {
		m, err := writeAttribute(w, attr)
		if err != nil {
			return 0, err
		}
		total += m
	}

	seqLen, err := w.PrependSequence(total)
	if err != nil {
		return 0, err
	}
	return seqLen, nil
}

func writeAttribute(w *asn1write.Writer, attr Attribute) (int, error) {
	var n int

	var m int
	var err error
	if attr.isEmail() {
		m, err = w.PrependIA5String(attr.Value)
	} else {
		m, err = w.PrependPrintableString(attr.Value)
	}
	if err != nil {
		return 0, err
	}
	n += m

	m, err = w.PrependOID(attr.OID)
	if err != nil {
		return 0, err
	}
	n += m

	m, err = w.PrependSequence(n)
	if err != nil {
		return 0, err
	}
	n = m

	m, err = w.PrependSet(n)
	if err != nil {
		return 0, err
	}
	return m, nil
}
