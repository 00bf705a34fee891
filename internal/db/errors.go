// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotVault is returned when a file exists but is not a sqlite database.
var ErrNotVault = errors.New("file is not a vault database")

// MapDBError inspects low-level driver errors and maps common failures to
// package-level sentinels. String based, so driver packages stay out of the
// callers' imports.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "unique") || strings.Contains(le, "constraint failed: vault_meta.id"):
		return ErrDuplicate
	case strings.Contains(le, "file is not a database") || strings.Contains(le, "file is encrypted"):
		return ErrNotVault
	}
	return err
}
