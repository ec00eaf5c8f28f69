package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthority(t *testing.T) {
	ca, err := NewAuthority("SchemeSeva Dev CA")
	require.NoError(t, err)

	assert.True(t, ca.Cert.IsCA)
	assert.True(t, ca.Cert.BasicConstraintsValid)
	assert.Equal(t, "SchemeSeva Dev CA", ca.Cert.Subject.CommonName)
	assert.NotZero(t, ca.Cert.KeyUsage&x509.KeyUsageCertSign)
}

func TestIssueServer_VerifiesAgainstCA(t *testing.T) {
	ca, err := NewAuthority("test ca")
	require.NoError(t, err)

	certPEM, keyPEM, err := ca.IssueServer("localhost", "127.0.0.1")
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))

	roots := x509.NewCertPool()
	roots.AddCert(ca.Cert)
	_, err = cert.Verify(x509.VerifyOptions{
		DNSName:   "localhost",
		Roots:     roots,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	assert.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err)
}

func TestIssueServer_NoHosts(t *testing.T) {
	ca, err := NewAuthority("test ca")
	require.NoError(t, err)

	_, _, err = ca.IssueServer()
	assert.Error(t, err)
}

func TestWriteAndLoadAuthority(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewAuthority("test ca")
	require.NoError(t, err)

	certPEM, keyPEM, err := ca.PEM()
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "ca", certPEM, keyPEM))

	info, err := os.Stat(filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadAuthority(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	require.NoError(t, err)
	assert.Equal(t, ca.Cert.Raw, loaded.Cert.Raw)
	assert.True(t, ca.Key.Equal(loaded.Key))
}

func TestLoadAuthority_Errors(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewAuthority("test ca")
	require.NoError(t, err)
	certPEM, keyPEM, err := ca.PEM()
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "ca", certPEM, keyPEM))

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))

	srvCert, srvKey, err := ca.IssueServer("localhost")
	require.NoError(t, err)
	require.NoError(t, WritePair(dir, "server", srvCert, srvKey))

	tests := []struct {
		name     string
		cert     string
		key      string
		contains string
	}{
		{"missing cert", filepath.Join(dir, "nope.crt"), filepath.Join(dir, "ca.key"), "read ca cert"},
		{"missing key", filepath.Join(dir, "ca.crt"), filepath.Join(dir, "nope.key"), "read ca key"},
		{"bad cert", garbage, filepath.Join(dir, "ca.key"), "invalid CA cert PEM"},
		{"bad key", filepath.Join(dir, "ca.crt"), garbage, "invalid CA key PEM"},
		{"leaf cert", filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), "not a CA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAuthority(tt.cert, tt.key)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
