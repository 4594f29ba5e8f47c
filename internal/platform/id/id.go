// Package id generates opaque record identifiers.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random 26-character lowercase base32 identifier.
// The underlying bytes form a UUIDv4 so identifiers remain convertible
// to the canonical UUID form for external tooling.
func NewID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	raw[6] = (raw[6] & 0x0F) | 0x40 // version 4
	raw[8] = (raw[8] & 0x3F) | 0x80 // RFC 4122 variant

	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}
