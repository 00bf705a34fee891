// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phigen/phivault/internal/crypto/vaultkey"
	"github.com/phigen/phivault/internal/db"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/model"
	"github.com/phigen/phivault/internal/security"
)

// State is the lifecycle position of a vault.
type State int

const (
	StateUninitialized State = iota
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Vault is the session object for one vault file.
type Vault struct {
	mu     sync.Mutex
	path   string
	store  *db.Store
	meta   *model.VaultMeta
	key    security.Secret
	kdf    model.KDFParams
	now    func() time.Time
	closed bool
}

// Option customizes a Vault at Open time.
type Option func(*Vault)

// WithKDFParams sets the Argon2id parameters used when a new master password
// is set. Existing vaults keep the parameters stored with them.
func WithKDFParams(p model.KDFParams) Option {
	return func(v *Vault) { v.kdf = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// Open binds a Vault to path. A missing file is an uninitialized vault and is
// not created until SetMasterPassword. The returned vault always starts
// locked.
func Open(path string, opts ...Option) (*Vault, error) {
	if path == "" {
		return nil, &ValidationError{Field: "path", Reason: "must not be empty"}
	}
	v := &Vault{path: path, kdf: vaultkey.DefaultParams, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	if err := vaultkey.ValidateParams(v.kdf); err != nil {
		return nil, &ValidationError{Field: "kdf", Reason: err.Error()}
	}

	exists, err := db.Exists(path)
	if err != nil {
		return nil, v.storageErr("open", err)
	}
	if !exists {
		logging.Debugf("vault: %s does not exist yet, starting uninitialized", path)
		return v, nil
	}
	if err := v.openStore(); err != nil {
		return nil, err
	}
	meta, err := v.store.LoadMeta(context.Background())
	if err != nil {
		_ = v.store.Close()
		return nil, v.storageErr("load metadata", fmt.Errorf("%w: %v", ErrCorrupted, err))
	}
	v.meta = meta
	logging.Debugf("vault: opened %s (%s)", path, v.stateLocked())
	return v, nil
}

func (v *Vault) openStore() error {
	if v.store != nil {
		return nil
	}
	s, err := db.Open(v.path)
	if err != nil {
		return v.storageErr("open", err)
	}
	v.store = s
	return nil
}

// Path returns the vault file location.
func (v *Vault) Path() string { return v.path }

// VaultID returns the identity stored with the vault, if initialized.
func (v *Vault) VaultID() (uuid.UUID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.meta == nil {
		return uuid.Nil, false
	}
	return v.meta.VaultID, true
}

// State reports the current lifecycle state.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *Vault) stateLocked() State {
	switch {
	case v.meta == nil:
		return StateUninitialized
	case v.key == nil:
		return StateLocked
	default:
		return StateUnlocked
	}
}

// IsLocked is true unless a key is resident. Uninitialized vaults are locked.
func (v *Vault) IsLocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.key == nil
}

// EntryCount returns the number of stored entries. It does not need the key
// and works on locked vaults.
func (v *Vault) EntryCount() (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, ErrClosed
	}
	if v.store == nil {
		return 0, nil
	}
	n, err := v.store.CountEntries(context.Background())
	if err != nil {
		return 0, v.storageErr("count", err)
	}
	return n, nil
}

// Snapshot writes a consistent copy of the encrypted vault file to dest.
// The copy is a complete vault that unlocks with the same master password.
func (v *Vault) Snapshot(dest string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.meta == nil {
		return v.storageErr("snapshot", errors.New("vault is not initialized"))
	}
	if err := v.store.Snapshot(context.Background(), dest); err != nil {
		return v.storageErr("snapshot", err)
	}
	return nil
}

// Close locks the vault and releases the file.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.key.Zero()
	v.closed = true
	if v.store == nil {
		return nil
	}
	err := v.store.Close()
	v.store = nil
	if err != nil {
		return v.storageErr("close", err)
	}
	return nil
}

func (v *Vault) storageErr(op string, err error) error {
	return &StorageError{Op: op, Path: v.path, Err: err}
}
