// Package token generates the opaque identifiers embedded in QR codes and
// premise friendly codes. Tokens are URL-safe and carry no structure; lookup
// always goes through the store.
package token

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a random URL-safe token with n bytes of entropy.
func New(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(buf)), nil
}

// NewQRIdentifier returns a fresh QR identifier (26 characters).
func NewQRIdentifier() (string, error) {
	return New(16)
}

// NewFriendlyCode returns a short human-shareable premise code (8 characters).
func NewFriendlyCode() (string, error) {
	return New(5)
}
