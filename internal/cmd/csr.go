package cmd

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/x509write"
	"github.com/spf13/cobra"
)

var (
	csrSubject  string
	csrKeyPath  string
	csrHash     string
	csrKeyUsage int
	csrOut      string
)

var csrCmd = &cobra.Command{
	Use:   "csr",
	Short: "Assemble a PKCS#10 certificate signing request",
	RunE:  runCSR,
}

func init() {
	csrCmd.Flags().StringVar(&csrSubject, "subject", "", "subject DN, e.g. \"CN=example.com,O=Example Co\" (required)")
	csrCmd.Flags().StringVar(&csrKeyPath, "key", "", "path to a PEM PKCS#1 RSA private key (required)")
	csrCmd.Flags().StringVar(&csrHash, "hash", "SHA256", "digest algorithm: SHA1, SHA256, SHA384, SHA512")
	csrCmd.Flags().IntVar(&csrKeyUsage, "key-usage", -1, "KeyUsage byte (omit to skip the extension)")
	csrCmd.Flags().StringVar(&csrOut, "out", "-", "output path for the PEM CSR (- for stdout)")
	_ = csrCmd.MarkFlagRequired("subject")
	_ = csrCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(csrCmd)
}

func runCSR(_ *cobra.Command, _ []string) error {
	hash, err := hashByName(csrHash)
	if err != nil {
		return err
	}

	keyPEM, err := os.ReadFile(csrKeyPath)
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return fmt.Errorf("no PEM block found in %s", csrKeyPath)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}

	csr := x509write.NewCSR()
	if err := csr.SetSubjectName(csrSubject); err != nil {
		return fmt.Errorf("invalid subject: %w", err)
	}
	csr.SetPublicKey(&key.PublicKey)
	csr.SetSigner(key)
	csr.SetHash(hash)

	if csrKeyUsage >= 0 {
		if err := csr.Extensions().KeyUsage(true, byte(csrKeyUsage)); err != nil {
			return fmt.Errorf("invalid key usage: %w", err)
		}
	}

	der, err := csr.DER()
	if err != nil {
		return fmt.Errorf("assembling CSR: %w", err)
	}

	return writeOutput(csrOut, pemutil.Encode(pemutil.BannerCertificateRequest, der))
}

func hashByName(name string) (crypto.Hash, error) {
	switch name {
	case "SHA1":
		return crypto.SHA1, nil
	case "", "SHA256":
		return crypto.SHA256, nil
	case "SHA384":
		return crypto.SHA384, nil
	case "SHA512":
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %q", name)
	}
}
