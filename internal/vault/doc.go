// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package vault implements the vault session: master-password gating, the
// lock state machine and encrypted entry storage on top of package db.
//
// States:
//
//	uninitialized --SetMasterPassword--> unlocked
//	locked <--Unlock / Lock--> unlocked
//
// Uninitialized and locked vaults look the same to entry operations: both
// return ErrVaultLocked. A wrong master password is an ordinary outcome and
// is reported as false, never as an error.
//
// A Vault is safe for concurrent use; one mutex serializes every operation.
package vault
