package cmd

import (
	"fmt"

	"github.com/ldvx/certforge/asn1write"
	"github.com/ldvx/certforge/pemutil"
	"github.com/ldvx/certforge/pkikey"
	"github.com/spf13/cobra"
)

var (
	privkeyIn  string
	privkeyOut string
)

var privkeyCmd = &cobra.Command{
	Use:   "privkey",
	Short: "Re-emit the PKCS#1 RSAPrivateKey for an RSA private key",
	Long: `privkey re-encodes an existing RSA private key as a PKCS#1
RSAPrivateKey DER structure wrapped in PEM. It does not generate keys;
generation is out of scope for this tool.`,
	RunE: runPrivkey,
}

func init() {
	privkeyCmd.Flags().StringVar(&privkeyIn, "key", "", "path to a PEM PKCS#1 RSA private key (required)")
	privkeyCmd.Flags().StringVar(&privkeyOut, "out", "-", "output path for the re-encoded PEM private key (- for stdout)")
	_ = privkeyCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(privkeyCmd)
}

func runPrivkey(_ *cobra.Command, _ []string) error {
	key, err := readRSAPrivateKeyPEM(privkeyIn)
	if err != nil {
		return err
	}

	buf := make([]byte, 4096)
	w := asn1write.NewWriter(buf)
	if _, err := pkikey.WriteRSAPrivateKey(w, key); err != nil {
		return fmt.Errorf("encoding private key: %w", err)
	}

	return writeOutput(privkeyOut, pemutil.Encode(pemutil.BannerRSAPrivateKey, w.Bytes()))
}
