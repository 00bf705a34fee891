// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/phigen/phivault/internal/model"
)

// FastKDF is an Argon2id parameter set cheap enough for unit tests. Never
// use it for a real vault.
var FastKDF = model.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32}

// Isolate points HOME and XDG_CONFIG_HOME at a fresh temp dir and changes
// into it, so no real user config is read or written. It returns the dir.
func Isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	return tmp
}

// VaultPath returns a not-yet-existing vault file path in a temp dir.
func VaultPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "vault.db")
}
