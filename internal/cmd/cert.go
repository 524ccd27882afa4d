package cmd

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"

	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/x509write"
	"github.com/spf13/cobra"
)

var (
	certSerial     string
	certSubject    string
	certIssuer     string
	certNotBefore  string
	certNotAfter   string
	certHash       string
	certSubjectKey string
	certIssuerKey  string
	certIsCA       bool
	certPathLen    int
	certKeyUsage   int
	certCriticalBC bool
	certOut        string
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Assemble an X.509 v3 certificate",
	RunE:  runCert,
}

func init() {
	certCmd.Flags().StringVar(&certSerial, "serial", "", "serial number, decimal or 0x-prefixed hex (required)")
	certCmd.Flags().StringVar(&certSubject, "subject", "", "subject DN (required)")
	certCmd.Flags().StringVar(&certIssuer, "issuer", "", "issuer DN (required)")
	certCmd.Flags().StringVar(&certNotBefore, "not-before", "", "validity start, YYYYMMDDHHMMSS[Z] (required)")
	certCmd.Flags().StringVar(&certNotAfter, "not-after", "", "validity end, YYYYMMDDHHMMSS[Z] (required)")
	certCmd.Flags().StringVar(&certHash, "hash", "SHA256", "digest algorithm: SHA1, SHA256, SHA384, SHA512")
	certCmd.Flags().StringVar(&certSubjectKey, "subject-key", "", "path to PEM public key being certified (required)")
	certCmd.Flags().StringVar(&certIssuerKey, "issuer-key", "", "path to PEM PKCS#1 RSA private key that signs the certificate (required)")
	certCmd.Flags().BoolVar(&certIsCA, "is-ca", false, "mark this certificate as a CA certificate")
	certCmd.Flags().IntVar(&certPathLen, "path-len", -1, "BasicConstraints pathLenConstraint (only meaningful with --is-ca)")
	certCmd.Flags().BoolVar(&certCriticalBC, "critical-basic-constraints", true, "mark BasicConstraints critical")
	certCmd.Flags().IntVar(&certKeyUsage, "key-usage", -1, "KeyUsage byte (omit to skip the extension)")
	certCmd.Flags().StringVar(&certOut, "out", "-", "output path for the PEM certificate (- for stdout)")
	for _, f := range []string{"serial", "subject", "issuer", "not-before", "not-after", "subject-key", "issuer-key"} {
		_ = certCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(certCmd)
}

func runCert(_ *cobra.Command, _ []string) error {
	hash, err := hashByName(certHash)
	if err != nil {
		return err
	}

	serial, ok := parseSerialFlag(certSerial)
	if !ok {
		return fmt.Errorf("invalid serial %q", certSerial)
	}

	subjectKey, err := readRSAPublicKeyPEM(certSubjectKey)
	if err != nil {
		return fmt.Errorf("reading subject key: %w", err)
	}

	issuerKeyPEM, err := os.ReadFile(certIssuerKey)
	if err != nil {
		return fmt.Errorf("reading issuer key: %w", err)
	}
	issuerBlock, _ := pem.Decode(issuerKeyPEM)
	if issuerBlock == nil {
		return fmt.Errorf("no PEM block found in %s", certIssuerKey)
	}
	issuerSigner, err := x509.ParsePKCS1PrivateKey(issuerBlock.Bytes)
	if err != nil {
		return fmt.Errorf("parsing issuer key: %w", err)
	}

	cert := x509write.NewCertificate()
	if err := cert.SetSubjectName(certSubject); err != nil {
		return fmt.Errorf("invalid subject: %w", err)
	}
	if err := cert.SetIssuerName(certIssuer); err != nil {
		return fmt.Errorf("invalid issuer: %w", err)
	}
	if err := cert.SetValidity(certNotBefore, certNotAfter); err != nil {
		return fmt.Errorf("invalid validity: %w", err)
	}
	cert.SetSerial(serial)
	cert.SetSubjectKey(subjectKey)
	cert.SetIssuerSigner(issuerSigner)
	cert.SetHash(hash)

	pathLen := certPathLen
	if !certIsCA {
		pathLen = -1
	}
	if err := cert.Extensions().BasicConstraints(certCriticalBC, certIsCA, pathLen); err != nil {
		return fmt.Errorf("invalid basic constraints: %w", err)
	}
	if certKeyUsage >= 0 {
		if err := cert.Extensions().KeyUsage(true, byte(certKeyUsage)); err != nil {
			return fmt.Errorf("invalid key usage: %w", err)
		}
	}

	der, err := cert.DER()
	if err != nil {
		return fmt.Errorf("assembling certificate: %w", err)
	}

	return writeOutput(certOut, pemutil.Encode(pemutil.BannerCertificate, der))
}

func parseSerialFlag(s string) (*big.Int, bool) {
	n := new(big.Int)
	base := 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
		base = 16
	}
	return n.SetString(s, base)
}
