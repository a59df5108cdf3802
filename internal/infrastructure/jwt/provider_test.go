package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-api-profile/internal/config"
	"github.com/go-api-profile/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

// newRSAProviderFromFiles generates a fresh RSA key pair, writes them to temp files,
// and loads a Provider through NewProvider.
func newRSAProviderFromFiles(t *testing.T) *Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         week,
	})
	require.NoError(t, err)
	return p
}

func flipSignatureByte(tok string) string {
	i := strings.LastIndex(tok, ".") + 1
	b := []byte(tok)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	for name, p := range map[string]*Provider{
		"hmac": NewHMACProvider([]byte("secret"), week),
		"rsa":  newRSAProviderFromFiles(t),
	} {
		t.Run(name, func(t *testing.T) {
			tok, err := p.Sign(42)
			require.NoError(t, err)
			uid, err := p.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, int64(42), uid)
		})
	}
}

func TestVerify_ValidUntilJustBeforeExpiry(t *testing.T) {
	issued := time.Now()
	p := NewHMACProvider([]byte("secret"), week).WithClock(func() time.Time { return issued })
	tok, err := p.Sign(7)
	require.NoError(t, err)

	later := p.WithClock(func() time.Time { return issued.Add(week - time.Minute) })
	uid, err := later.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Now()
	p := NewHMACProvider([]byte("secret"), week).WithClock(func() time.Time { return issued })
	tok, err := p.Sign(7)
	require.NoError(t, err)

	later := p.WithClock(func() time.Time { return issued.Add(week + time.Minute) })
	_, err = later.Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
	assert.False(t, errors.Is(err, domain.ErrTokenMalformed))
}

func TestVerify_FlippedSignature(t *testing.T) {
	p := NewHMACProvider([]byte("secret"), week)
	tok, err := p.Sign(7)
	require.NoError(t, err)

	_, err = p.Verify(flipSignatureByte(tok))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
	assert.False(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestVerify_WrongKey(t *testing.T) {
	tok, err := NewHMACProvider([]byte("one"), week).Sign(7)
	require.NoError(t, err)

	_, err = NewHMACProvider([]byte("two"), week).Verify(tok)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestVerify_Malformed(t *testing.T) {
	p := NewHMACProvider([]byte("secret"), week)
	_, err := p.Verify("not-a-real-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenMalformed))
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
	assert.False(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestVerify_RejectsAlgorithmSwitch(t *testing.T) {
	rsaProvider := newRSAProviderFromFiles(t)
	tok, err := NewHMACProvider([]byte("secret"), week).Sign(7)
	require.NoError(t, err)

	_, err = rsaProvider.Verify(tok)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestNewProvider_NoKeys(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTExpiry: week})
	assert.Error(t, err)
}

func TestNewProvider_MissingKeyFile(t *testing.T) {
	_, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		JWTPublicKeyPath:  filepath.Join(t.TempDir(), "missing.pub"),
		JWTExpiry:         week,
	})
	assert.Error(t, err)
}
