// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds the in-memory wrapper used for key material and
// other sensitive bytes. A Secret redacts itself when formatted or encoded and
// can be wiped in place.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

// Secret is a byte slice holding sensitive material (derived keys, master
// passwords read from a terminal).
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return "[SECRET]" }

// Format implements fmt.Formatter so `%v`, `%#v` and `%x` are redacted too.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, "[SECRET]")
}

// Len reports the number of bytes held.
func (s Secret) Len() int { return len(s) }

// IsZero reports whether the secret is empty or fully wiped.
func (s Secret) IsZero() bool {
	for _, b := range s {
		if b != 0 {
			return false
		}
	}
	return true
}

// Zero overwrites the underlying byte slice with zeros and drops it.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	Wipe(*s)
	*s = nil
}

// Use executes fn with the underlying bytes (not a copy).
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal("[SECRET]") }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[SECRET]"), nil }

// FromString creates a Secret from a string. Go strings are immutable, so
// the original string cannot be wiped; prefer FromBytes for terminal input.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes creates a Secret holding a copy of in.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
