// Package auth implements the SPICE ticket cryptography (§4.3.2, §9 "RSA
// key format"): parsing the server's DER-encoded public key and RSA-OAEP
// encrypting the session password against it. Grounded on the teacher's
// stdlib-crypto style (api/pkg/crypto/encryption.go): small pure functions
// over byte slices, fmt.Errorf wrapping, no package-level state.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // SPICE mandates SHA-1 for OAEP/MGF1 compatibility.
	"crypto/x509"
	"fmt"
)

// TicketMaxLen is the length of a padded ticket, including the trailing NUL;
// the password portion is at most TicketMaxLen-1 bytes.
const TicketMaxLen = 60

// CiphertextSize is the RSA-OAEP ciphertext size for a 1024-bit modulus.
const CiphertextSize = 128

// ParsePublicKey parses the server's DER-encoded SubjectPublicKeyInfo
// (§9: 162 bytes for a 1024-bit RSA key) into an *rsa.PublicKey.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("auth: parse server public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("auth: server public key is %T, not RSA", pub)
	}
	return rsaPub, nil
}

// PadTicket pads (or truncates) password to TicketMaxLen bytes with a
// trailing NUL, left-aligned, per §4.3.2.
func PadTicket(password string) []byte {
	raw := []byte(password)
	if len(raw) > TicketMaxLen-1 {
		raw = raw[:TicketMaxLen-1]
	}
	buf := make([]byte, TicketMaxLen)
	copy(buf, raw)
	return buf
}

// EncryptTicket RSA-OAEP(SHA-1, MGF1-SHA-1) encrypts the padded ticket
// against the server's public key, producing the 128-byte ciphertext sent
// immediately after the auth-method selector.
func EncryptTicket(pub *rsa.PublicKey, password string) ([]byte, error) {
	ticket := PadTicket(password)
	h := sha1.New()
	ct, err := rsa.EncryptOAEP(h, rand.Reader, pub, ticket, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt ticket: %w", err)
	}
	if len(ct) != CiphertextSize {
		return nil, fmt.Errorf("auth: unexpected ciphertext size %d (want %d)", len(ct), CiphertextSize)
	}
	return ct, nil
}
