// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model contains the plain data types shared by the vault, the
// persistence layer and the user interfaces.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one stored credential. Password holds plaintext and only ever
// lives in memory; the store persists entries sealed under the vault key.
type Entry struct {
	ID          int64
	Association string
	Username    string
	Password    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// String returns a redacted representation safe for logs.
func (e Entry) String() string {
	return fmt.Sprintf("#%d %s (%s)", e.ID, e.Association, e.Username)
}

// Format keeps the password out of every fmt verb, including %+v.
func (e Entry) Format(f fmt.State, c rune) {
	_, _ = fmt.Fprint(f, e.String())
}

// MaskedPassword returns up to 16 asterisks, one per password rune.
func (e Entry) MaskedPassword() string {
	n := len([]rune(e.Password))
	if n > 16 {
		n = 16
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = '*'
	}
	return string(out)
}

// KDFParams are the Argon2id parameters persisted alongside the salt.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// VaultMeta is the per-vault key material record: random salt, KDF
// parameters and a verification record. It never contains key bytes.
type VaultMeta struct {
	VaultID   uuid.UUID
	Salt      []byte
	KDF       KDFParams
	Verifier  []byte
	CreatedAt time.Time
}

// SealedEntry is an entry as it sits on disk.
type SealedEntry struct {
	ID         int64
	Nonce      []byte
	Ciphertext []byte
}
