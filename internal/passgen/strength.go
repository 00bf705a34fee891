// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package passgen

import (
	"strings"
	"unicode"
)

// Label is the categorical strength rating.
type Label string

const (
	Weak   Label = "weak"
	Fair   Label = "fair"
	Good   Label = "good"
	Strong Label = "strong"
)

// Strength is a 0-100 score plus its label.
type Strength struct {
	Score int
	Label Label
}

// Scoring weights. classPoints must equal maxPenalty: a password then never
// scores below a prefix of itself that has fewer character classes.
const (
	pointsPerRune   = 4
	maxLengthPoints = 48
	longBonusAt     = 16
	longBonus       = 7
	classPoints     = 15
	maxDistinct     = 10
	runPenalty      = 2
	maxPenalty      = 15
)

// commonPasswords is a small blocklist; a case-insensitive exact match costs
// the full penalty.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "passw0rd": {}, "123456": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwerty": {}, "qwertyuiop": {}, "letmein": {},
	"welcome": {}, "iloveyou": {}, "admin": {}, "abc123": {}, "monkey": {},
	"dragon": {}, "football": {}, "baseball": {}, "sunshine": {}, "princess": {},
	"trustno1": {}, "master": {}, "shadow": {}, "superman": {}, "111111": {},
	"000000": {}, "changeme": {}, "secret": {},
}

// LabelFor maps a score to its label: <50 weak, <70 fair, <90 good, else strong.
func LabelFor(score int) Label {
	switch {
	case score < 50:
		return Weak
	case score < 70:
		return Fair
	case score < 90:
		return Good
	default:
		return Strong
	}
}

// CalculateStrength scores password from its content alone: length,
// character-class diversity, distinct characters, minus a capped penalty for
// repeats, sequences and well-known passwords. It is deterministic.
func CalculateStrength(password string) Strength {
	runes := []rune(password)
	if len(runes) == 0 {
		return Strength{Score: 0, Label: Weak}
	}

	score := pointsPerRune * len(runes)
	if score > maxLengthPoints {
		score = maxLengthPoints
	}
	if len(runes) >= longBonusAt {
		score += longBonus
	}
	score += classPoints * countClasses(runes)

	distinct := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		distinct[r] = struct{}{}
	}
	score += min(len(distinct), maxDistinct)

	score -= penalty(password, runes)

	score = max(0, min(score, 100))
	return Strength{Score: score, Label: LabelFor(score)}
}

func countClasses(runes []rune) int {
	var lower, upper, digit, other bool
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			n++
		}
	}
	return n
}

func penalty(password string, runes []rune) int {
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return maxPenalty
	}
	p := 0

	// Runs of the same rune: "aaa".
	run := 1
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && runes[i] == runes[i-1] {
			run++
			continue
		}
		if run >= 3 {
			p += runPenalty * (run - 2)
		}
		run = 1
	}

	// Ascending or descending sequences: "abc", "321".
	seq, dir := 1, rune(0)
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) {
			d := runes[i] - runes[i-1]
			if (d == 1 || d == -1) && (seq == 1 || d == dir) {
				dir = d
				seq++
				continue
			}
		}
		if seq >= 3 {
			p += runPenalty * (seq - 2)
		}
		seq, dir = 1, 0
		// The current pair may start a new sequence in the other direction.
		if i < len(runes) {
			if d := runes[i] - runes[i-1]; d == 1 || d == -1 {
				seq, dir = 2, d
			}
		}
	}

	return min(p, maxPenalty)
}
