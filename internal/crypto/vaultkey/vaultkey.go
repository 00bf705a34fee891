// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vaultkey derives and uses the vault key material.
//
// The master password is stretched with Argon2id over a per-vault random salt.
// The resulting root key is split with HKDF-SHA256 into an encryption key
// (XChaCha20-Poly1305) and a verification key whose HMAC over a fixed label is
// persisted as the verification record. The root key is wiped right after the
// split; neither derived key is ever written to disk.
package vaultkey

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/phigen/phivault/internal/model"
	"github.com/phigen/phivault/internal/security"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltLength is the size of the persisted per-vault salt.
	SaltLength = 16
	// KeyLength is the size of each derived subkey.
	KeyLength = chacha20poly1305.KeySize
	// NonceLength is the XChaCha20-Poly1305 nonce size.
	NonceLength = chacha20poly1305.NonceSizeX

	encInfo       = "phivault/v1/encryption"
	verifyInfo    = "phivault/v1/verification"
	verifierLabel = "phivault/v1/master-password-check"
)

// DefaultParams are the Argon2id parameters for new vaults.
var DefaultParams = model.KDFParams{
	Time:      3,
	MemoryKiB: 64 * 1024,
	Threads:   4,
	KeyLen:    32,
}

var (
	// ErrInvalidParams is returned for KDF parameters that are unusable or
	// look tampered with.
	ErrInvalidParams = errors.New("vaultkey: invalid kdf parameters")
	// ErrDecrypt is returned when a ciphertext fails authentication.
	ErrDecrypt = errors.New("vaultkey: message authentication failed")
)

// ValidateParams rejects parameter sets that would make derivation trivially
// weak or absurdly expensive.
func ValidateParams(p model.KDFParams) error {
	switch {
	case p.Time < 1 || p.Time > 64:
		return fmt.Errorf("%w: time=%d", ErrInvalidParams, p.Time)
	case p.MemoryKiB < 8 || p.MemoryKiB > 4*1024*1024:
		return fmt.Errorf("%w: memory=%dKiB", ErrInvalidParams, p.MemoryKiB)
	case p.Threads < 1:
		return fmt.Errorf("%w: threads=%d", ErrInvalidParams, p.Threads)
	case p.KeyLen < 16 || p.KeyLen > 64:
		return fmt.Errorf("%w: keylen=%d", ErrInvalidParams, p.KeyLen)
	}
	return nil
}

// NewSalt returns SaltLength bytes from crypto/rand.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("vaultkey: generate salt: %w", err)
	}
	return salt, nil
}

// Keys is the derived key pair for one unlocked vault.
type Keys struct {
	Enc    security.Secret
	verify security.Secret
}

// Derive stretches password with Argon2id and splits the result.
func Derive(password, salt []byte, p model.KDFParams) (*Keys, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("%w: salt length %d", ErrInvalidParams, len(salt))
	}
	root := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
	defer security.Wipe(root)

	enc, err := expand(root, salt, encInfo)
	if err != nil {
		return nil, err
	}
	verify, err := expand(root, salt, verifyInfo)
	if err != nil {
		security.Wipe(enc)
		return nil, err
	}
	return &Keys{Enc: security.Secret(enc), verify: security.Secret(verify)}, nil
}

func expand(root, salt []byte, info string) ([]byte, error) {
	out := make([]byte, KeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, root, salt, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("vaultkey: hkdf expand %s: %w", info, err)
	}
	return out, nil
}

// Verifier returns the verification record for these keys.
func (k *Keys) Verifier() []byte {
	mac := hmac.New(sha256.New, k.verify)
	mac.Write([]byte(verifierLabel))
	return mac.Sum(nil)
}

// Matches compares the keys against a stored verification record in
// constant time.
func (k *Keys) Matches(verifier []byte) bool {
	return hmac.Equal(k.Verifier(), verifier)
}

// Zero wipes both subkeys.
func (k *Keys) Zero() {
	if k == nil {
		return
	}
	k.Enc.Zero()
	k.verify.Zero()
}

// TakeEnc hands ownership of the encryption key to the caller and wipes the
// verification key.
func (k *Keys) TakeEnc() security.Secret {
	enc := k.Enc
	k.Enc = nil
	k.verify.Zero()
	return enc
}

// Seal encrypts plaintext under key with a fresh random nonce. ad is
// authenticated but not encrypted.
func Seal(key security.Secret, plaintext, ad []byte) (nonce, ciphertext []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, fmt.Errorf("vaultkey: init cipher: %w", err)
	}
	nonce = make([]byte, NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("vaultkey: generate nonce: %w", err)
	}
	return nonce, aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts a ciphertext produced by Seal.
func Open(key security.Secret, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vaultkey: init cipher: %w", err)
	}
	if len(nonce) != NonceLength {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
