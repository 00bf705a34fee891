// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package passgen

import "github.com/ccojocar/zxcvbn-go"

// Estimate is a second opinion from zxcvbn: guess entropy in bits and a human
// crack-time string. It is informational and does not feed CalculateStrength.
type Estimate struct {
	EntropyBits float64
	CrackTime   string
	Score       int // zxcvbn's own 0-4 scale
}

// EstimateCrack runs zxcvbn over password. userInputs (association,
// username) are penalized when they appear inside the password.
func EstimateCrack(password string, userInputs ...string) Estimate {
	m := zxcvbn.PasswordStrength(password, userInputs)
	return Estimate{EntropyBits: m.Entropy, CrackTime: m.CrackTimeDisplay, Score: m.Score}
}
