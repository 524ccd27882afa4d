package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRSAKey(t *testing.T, dir string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	path := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

// go test -timeout 30s -run ^TestRunCSRWritesParseablePEM$ github.com/ldvx/certforge/internal/cmd
func TestRunCSRWritesParseablePEM(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeTestRSAKey(t, dir)
	outPath := filepath.Join(dir, "out.csr")

	csrSubject = "CN=leaf.example.com"
	csrKeyPath = keyPath
	csrHash = "SHA256"
	csrKeyUsage = -1
	csrOut = outPath

	require.NoError(t, runCSR(csrCmd, nil))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	_, err = x509.ParseCertificateRequest(block.Bytes)
	assert.NoError(t, err)
}

func TestHashByNameRejectsUnknown(t *testing.T) {
	_, err := hashByName("MD2")
	assert.Error(t, err)
}
