package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadTicket(t *testing.T) {
	buf := PadTicket("hunter2")
	require.Len(t, buf, TicketMaxLen)
	assert.Equal(t, []byte("hunter2\x00"), buf[:8])
	assert.Equal(t, byte(0), buf[TicketMaxLen-1])
}

func TestPadTicketTruncates(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	buf := PadTicket(string(long))
	require.Len(t, buf, TicketMaxLen)
	assert.Equal(t, byte(0), buf[TicketMaxLen-1])
}

func TestEncryptTicketRoundTrip(t *testing.T) {
	// Scenario S2: decrypting the ciphertext with the known private key
	// yields the padded ticket, "hunter2\0" left-aligned.
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	ct, err := EncryptTicket(&priv.PublicKey, "hunter2")
	require.NoError(t, err)
	require.Len(t, ct, CiphertextSize)

	h := sha1.New() //nolint:gosec
	plain, err := rsa.DecryptOAEP(h, rand.Reader, priv, ct, nil)
	require.NoError(t, err)
	require.Len(t, plain, TicketMaxLen)
	assert.Equal(t, []byte("hunter2\x00"), plain[:8])
}

func TestParsePublicKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := ParsePublicKey(der)
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey.N, pub.N)
	assert.Equal(t, priv.PublicKey.E, pub.E)
}
