// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

var (
	// ErrInvalidLength is returned for lengths outside [MinLength, MaxLength].
	ErrInvalidLength = errors.New("passgen: invalid length")
	// ErrEmptyCharset is returned when no character class is selected.
	ErrEmptyCharset = errors.New("passgen: no character class selected")
)

// randReader is crypto/rand in production; tests may swap it.
var randReader io.Reader = rand.Reader

// Generate returns a password of exactly length characters drawn uniformly
// from cs. Candidates missing one of the selected classes are discarded and
// redrawn, so the result contains every class and stays uniform over the
// strings that do.
func Generate(length int, cs Charset) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidLength, length, MinLength, MaxLength)
	}
	classes := cs.classes()
	if len(classes) == 0 {
		return "", ErrEmptyCharset
	}
	alphabet := cs.Alphabet()
	size := big.NewInt(int64(len(alphabet)))

	buf := make([]byte, length)
	for {
		for i := range buf {
			n, err := rand.Int(randReader, size)
			if err != nil {
				return "", fmt.Errorf("passgen: read random: %w", err)
			}
			buf[i] = alphabet[n.Int64()]
		}
		if coversAll(string(buf), classes) {
			return string(buf), nil
		}
	}
}

func coversAll(s string, classes []string) bool {
	for _, cl := range classes {
		if !strings.ContainsAny(s, cl) {
			return false
		}
	}
	return true
}
