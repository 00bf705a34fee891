// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package passgen generates random passwords and scores password strength.
// Both are pure functions of their input; generation draws from crypto/rand.
package passgen

// Character classes.
const (
	LowerChars  = "abcdefghijklmnopqrstuvwxyz"
	UpperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DigitChars  = "0123456789"
	SymbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"
)

// Length bounds accepted by Generate.
const (
	MinLength     = 8
	MaxLength     = 128
	DefaultLength = 16
)

// Charset selects which character classes a generated password draws from.
type Charset struct {
	Lower   bool
	Upper   bool
	Digits  bool
	Symbols bool
}

// DefaultCharset uses letters, digits and symbols.
var DefaultCharset = Charset{Lower: true, Upper: true, Digits: true, Symbols: true}

// classes returns the selected class alphabets in a fixed order.
func (c Charset) classes() []string {
	var out []string
	if c.Lower {
		out = append(out, LowerChars)
	}
	if c.Upper {
		out = append(out, UpperChars)
	}
	if c.Digits {
		out = append(out, DigitChars)
	}
	if c.Symbols {
		out = append(out, SymbolChars)
	}
	return out
}

// Alphabet is the concatenation of the selected classes.
func (c Charset) Alphabet() string {
	var s string
	for _, cl := range c.classes() {
		s += cl
	}
	return s
}

// Empty reports whether no class is selected.
func (c Charset) Empty() bool { return len(c.classes()) == 0 }
