// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phigen/phivault/internal/crypto/vaultkey"
	"github.com/phigen/phivault/internal/db"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/model"
)

// HasMasterPassword reports whether the location holds an initialized vault,
// independent of lock state.
func (v *Vault) HasMasterPassword() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.meta != nil
}

// SetMasterPassword initializes the vault. It returns false, and leaves the
// existing key material untouched, when a master password already exists.
// On success the vault is unlocked. Minimum length is the caller's policy.
func (v *Vault) SetMasterPassword(password string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false, ErrClosed
	}
	if v.meta != nil {
		return false, nil
	}
	if password == "" {
		return false, &ValidationError{Field: "master password", Reason: "must not be empty"}
	}

	salt, err := vaultkey.NewSalt()
	if err != nil {
		return false, err
	}
	keys, err := vaultkey.Derive([]byte(password), salt, v.kdf)
	if err != nil {
		return false, err
	}
	defer keys.Zero()

	meta := model.VaultMeta{
		VaultID:   uuid.New(),
		Salt:      salt,
		KDF:       v.kdf,
		Verifier:  keys.Verifier(),
		CreatedAt: v.now().UTC(),
	}

	if err := v.openStore(); err != nil {
		return false, err
	}
	if err := v.store.CreateMeta(context.Background(), meta); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return false, nil
		}
		return false, v.storageErr("initialize", err)
	}

	v.meta = &meta
	v.key = keys.TakeEnc()
	logging.Infof("vault: initialized %s (id %s)", v.path, meta.VaultID)
	return true, nil
}

// Unlock derives a key from password and the stored salt and compares it to
// the verification record in constant time. A wrong password returns false
// and leaves the state as it was.
func (v *Vault) Unlock(password string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false, ErrClosed
	}
	if v.meta == nil {
		return false, nil
	}

	keys, err := vaultkey.Derive([]byte(password), v.meta.Salt, v.meta.KDF)
	if err != nil {
		return false, v.storageErr("unlock", fmt.Errorf("%w: %v", ErrCorrupted, err))
	}
	defer keys.Zero()
	if !keys.Matches(v.meta.Verifier) {
		logging.Debugf("vault: unlock rejected for %s", v.path)
		return false, nil
	}

	v.key.Zero()
	v.key = keys.TakeEnc()
	logging.Debugf("vault: unlocked %s", v.path)
	return true, nil
}

// Lock wipes the resident key. It is idempotent.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.key != nil {
		logging.Debugf("vault: locked %s", v.path)
	}
	v.key.Zero()
}

// ChangeMasterPassword re-keys the vault: a fresh salt, new keys and every
// entry re-sealed, committed in one transaction. It returns false when
// oldPassword is wrong. The vault must be unlocked.
func (v *Vault) ChangeMasterPassword(oldPassword, newPassword string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return false, err
	}
	if newPassword == "" {
		return false, &ValidationError{Field: "master password", Reason: "must not be empty"}
	}

	check, err := vaultkey.Derive([]byte(oldPassword), v.meta.Salt, v.meta.KDF)
	if err != nil {
		return false, v.storageErr("change password", fmt.Errorf("%w: %v", ErrCorrupted, err))
	}
	ok := check.Matches(v.meta.Verifier)
	check.Zero()
	if !ok {
		return false, nil
	}

	ctx := context.Background()
	sealed, err := v.store.ListEntries(ctx)
	if err != nil {
		return false, v.storageErr("change password", err)
	}

	salt, err := vaultkey.NewSalt()
	if err != nil {
		return false, err
	}
	keys, err := vaultkey.Derive([]byte(newPassword), salt, v.kdf)
	if err != nil {
		return false, err
	}
	defer keys.Zero()

	meta := *v.meta
	meta.Salt = salt
	meta.KDF = v.kdf
	meta.Verifier = keys.Verifier()

	resealed := make([]model.SealedEntry, 0, len(sealed))
	for _, se := range sealed {
		plain, err := vaultkey.Open(v.key, se.Nonce, se.Ciphertext, v.associatedData(se.ID))
		if err != nil {
			return false, v.storageErr("change password", fmt.Errorf("%w: entry %d: %v", ErrCorrupted, se.ID, err))
		}
		nonce, ct, err := vaultkey.Seal(keys.Enc, plain, v.associatedData(se.ID))
		wipe(plain)
		if err != nil {
			return false, err
		}
		resealed = append(resealed, model.SealedEntry{ID: se.ID, Nonce: nonce, Ciphertext: ct})
	}

	if err := v.store.Rekey(ctx, meta, resealed); err != nil {
		return false, v.storageErr("change password", err)
	}
	v.meta = &meta
	v.key.Zero()
	v.key = keys.TakeEnc()
	logging.Infof("vault: master password changed for %s (%d entries re-sealed)", v.path, len(resealed))
	return true, nil
}

func (v *Vault) requireUnlocked() error {
	if v.closed {
		return ErrClosed
	}
	if v.key == nil || v.meta == nil {
		return ErrVaultLocked
	}
	return nil
}
