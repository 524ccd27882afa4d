package cmd

import (
	"fmt"

	"github.com/ldvx/certforge/asn1write"
	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/pkikey"
	"github.com/spf13/cobra"
)

var (
	pubkeyIn  string
	pubkeyOut string
)

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Re-emit the SubjectPublicKeyInfo for an RSA private key",
	RunE:  runPubkey,
}

func init() {
	pubkeyCmd.Flags().StringVar(&pubkeyIn, "key", "", "path to a PEM PKCS#1 RSA private key (required)")
	pubkeyCmd.Flags().StringVar(&pubkeyOut, "out", "-", "output path for the PEM public key (- for stdout)")
	_ = pubkeyCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(pubkeyCmd)
}

func runPubkey(_ *cobra.Command, _ []string) error {
	key, err := readRSAPrivateKeyPEM(pubkeyIn)
	if err != nil {
		return err
	}

	buf := make([]byte, 1024)
	w := asn1write.NewWriter(buf)
	if _, err := pkikey.WriteSubjectPublicKeyInfo(w, &key.PublicKey); err != nil {
		return fmt.Errorf("encoding public key: %w", err)
	}

	return writeOutput(pubkeyOut, pemutil.Encode(pemutil.BannerPublicKey, w.Bytes()))
}
