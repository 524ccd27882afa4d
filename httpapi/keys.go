package httpapi

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
)

var (
	errNoPEMBlock   = errors.New("no PEM block found")
	errNotRSAPublic = errors.New("PEM block does not contain an RSA public key")
	errUnknownHash  = errors.New("unknown hash algorithm")
)

func parseRSAPrivateKeyPEM(data string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil {
		return nil, errNoPEMBlock
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse PKCS#1 private key")
	}
	return key, nil
}

func parseRSAPublicKeyPEM(data string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil {
		return nil, errNoPEMBlock
	}

	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}

	any, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key")
	}
	pub, ok := any.(*rsa.PublicKey)
	if !ok {
		return nil, errNotRSAPublic
	}
	return pub, nil
}

func parseHash(name string) (crypto.Hash, error) {
	switch name {
	case "", "SHA256":
		return crypto.SHA256, nil
	case "SHA1":
		return crypto.SHA1, nil
	case "SHA384":
		return crypto.SHA384, nil
	case "SHA512":
		return crypto.SHA512, nil
	default:
		return 0, errUnknownHash
	}
}
