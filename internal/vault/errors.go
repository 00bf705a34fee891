// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrVaultLocked is returned by every entry operation while the vault is
	// locked or not yet initialized.
	ErrVaultLocked = errors.New("vault: vault is locked")
	// ErrNotFound is returned by Update when the target id does not exist.
	ErrNotFound = errors.New("vault: entry not found")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("vault: invalid input")
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("vault: storage failure")
	// ErrCorrupted is wrapped by a StorageError when stored data fails
	// authentication or cannot be parsed.
	ErrCorrupted = errors.New("vault: data is corrupted")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("vault: vault is closed")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vault: invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError wraps a persistence failure. The vault never retries.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vault: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorage) match.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
