// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/phigen/phivault/internal/model"
	"github.com/phigen/phivault/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestVault(t *testing.T, path string) *Vault {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "vault.db")
	}
	v, err := Open(path, WithKDFParams(testutil.FastKDF))
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func initVault(t *testing.T, path string) *Vault {
	t.Helper()
	v := openTestVault(t, path)
	ok, err := v.SetMasterPassword("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func strPtr(s string) *string { return &s }

func TestScenario_FreshVaultLifecycle(t *testing.T) {
	v := openTestVault(t, "")
	assert.Equal(t, StateUninitialized, v.State())
	assert.False(t, v.HasMasterPassword())
	assert.True(t, v.IsLocked())

	ok, err := v.SetMasterPassword("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, v.IsLocked())

	id, err := v.Add("gmail.com", "me", "Xy9!zz12")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	v.Lock()
	ok, err = v.Unlock("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.IsLocked())

	ok, err = v.Unlock("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)

	all, err := v.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, "gmail.com", all[0].Association)
	assert.Equal(t, "me", all[0].Username)
	assert.Equal(t, "Xy9!zz12", all[0].Password)
}

func TestOpen_MissingPathIsUninitializedAndNotCreated(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.db")
	v := openTestVault(t, p)
	assert.False(t, v.HasMasterPassword())
	_, err := os.Stat(p)
	assert.True(t, errors.Is(err, os.ErrNotExist), "open must not create the file")

	ok, err := v.Unlock("anything")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := v.EntryCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_RejectsEmptyPathAndBadKDF(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Open(filepath.Join(t.TempDir(), "v.db"), WithKDFParams(model.KDFParams{}))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOpen_CorruptFileIsStorageError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte("garbage!"), 512), 0o600))
	_, err := Open(p, WithKDFParams(testutil.FastKDF))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestSetMasterPassword_SecondCallRejectedAndKeyKept(t *testing.T) {
	v := initVault(t, "")
	ok, err := v.SetMasterPassword("another-password")
	require.NoError(t, err)
	assert.False(t, ok)

	v.Lock()
	ok, err = v.Unlock("another-password")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = v.Unlock("abcdefgh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetMasterPassword_EmptyRejected(t *testing.T) {
	v := openTestVault(t, "")
	ok, err := v.SetMasterPassword("")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, v.HasMasterPassword())
}

func TestReopen_StartsLockedWithSameEntries(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vault.db")
	v := initVault(t, p)
	id, err := v.Add("site", "user", "pw-123456")
	require.NoError(t, err)
	require.NoError(t, v.Close())

	again := openTestVault(t, p)
	assert.Equal(t, StateLocked, again.State())
	assert.True(t, again.HasMasterPassword())
	ok, err := again.Unlock("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	e, err := again.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "pw-123456", e.Password)
}

func TestLock_IsIdempotentAndBlocksCRUD(t *testing.T) {
	v := initVault(t, "")
	id, err := v.Add("a", "b", "c")
	require.NoError(t, err)

	v.Lock()
	v.Lock()
	assert.Equal(t, StateLocked, v.State())

	_, err = v.Add("a", "b", "c")
	assert.ErrorIs(t, err, ErrVaultLocked)
	_, err = v.GetAll()
	assert.ErrorIs(t, err, ErrVaultLocked)
	_, err = v.GetByID(id)
	assert.ErrorIs(t, err, ErrVaultLocked)
	assert.ErrorIs(t, v.Delete(id), ErrVaultLocked)
	assert.ErrorIs(t, v.Update(id, EntryUpdate{Username: strPtr("x")}), ErrVaultLocked)

	ok, err := v.Unlock("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	e, err := v.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "a", e.Association)
}

func TestUninitializedRejectsCRUD(t *testing.T) {
	v := openTestVault(t, "")
	_, err := v.Add("a", "b", "c")
	assert.ErrorIs(t, err, ErrVaultLocked)
	_, err = v.GetAll()
	assert.ErrorIs(t, err, ErrVaultLocked)
}

func TestLock_WipesKeyBytes(t *testing.T) {
	v := initVault(t, "")
	v.mu.Lock()
	key := v.key
	v.mu.Unlock()
	require.NotEmpty(t, key)
	v.Lock()
	for i, b := range key {
		require.Zerof(t, b, "key byte %d not wiped", i)
	}
}

func TestAdd_Validation(t *testing.T) {
	v := initVault(t, "")
	cases := []struct{ a, u, p, field string }{
		{"", "u", "p", "association"},
		{"   ", "u", "p", "association"},
		{"a", "\t", "p", "username"},
		{"a", "u", "  ", "password"},
	}
	for _, c := range cases {
		_, err := v.Add(c.a, c.u, c.p)
		require.ErrorIs(t, err, ErrValidation)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, c.field, ve.Field)
	}
	all, err := v.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdd_TrimsLabelsKeepsPassword(t *testing.T) {
	v := initVault(t, "")
	id, err := v.Add("  gmail.com ", " me ", " pass word ")
	require.NoError(t, err)
	e, err := v.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "gmail.com", e.Association)
	assert.Equal(t, "me", e.Username)
	assert.Equal(t, " pass word ", e.Password)
}

func TestGetAll_InsertionOrder(t *testing.T) {
	v := initVault(t, "")
	names := []string{"zeta", "alpha", "mike"}
	for _, n := range names {
		_, err := v.Add(n, "u", "p")
		require.NoError(t, err)
	}
	all, err := v.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, n := range names {
		assert.Equal(t, n, all[i].Association)
	}
}

func TestGetByID_MissingIsNil(t *testing.T) {
	v := initVault(t, "")
	e, err := v.GetByID(42)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestDelete_ThenGetIsNotFoundAndIdempotent(t *testing.T) {
	v := initVault(t, "")
	id, err := v.Add("a", "b", "c")
	require.NoError(t, err)
	require.NoError(t, v.Delete(id))
	e, err := v.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, e)
	require.NoError(t, v.Delete(id))
	require.NoError(t, v.Delete(9999))
}

func TestUpdate(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v, err := Open(filepath.Join(t.TempDir(), "v.db"), WithKDFParams(testutil.FastKDF), WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	defer func() { _ = v.Close() }()
	ok, err := v.SetMasterPassword("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)

	id, err := v.Add("site", "user", "old")
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	require.NoError(t, v.Update(id, EntryUpdate{Password: strPtr("new-pass"), Username: strPtr(" user2 ")}))
	e, err := v.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "site", e.Association)
	assert.Equal(t, "user2", e.Username)
	assert.Equal(t, "new-pass", e.Password)
	assert.True(t, e.UpdatedAt.After(e.CreatedAt))

	err = v.Update(id, EntryUpdate{Association: strPtr("  ")})
	assert.ErrorIs(t, err, ErrValidation)

	err = v.Update(777, EntryUpdate{Username: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeMasterPassword(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vault.db")
	v := initVault(t, p)
	id, err := v.Add("bank", "me", "s3cret!")
	require.NoError(t, err)

	ok, err := v.ChangeMasterPassword("not-it", "new-master")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.ChangeMasterPassword("abcdefgh", "new-master")
	require.NoError(t, err)
	require.True(t, ok)

	e, err := v.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", e.Password)
	require.NoError(t, v.Close())

	again := openTestVault(t, p)
	ok, err = again.Unlock("abcdefgh")
	require.NoError(t, err)
	assert.False(t, ok, "old password must stop working")
	ok, err = again.Unlock("new-master")
	require.NoError(t, err)
	require.True(t, ok)
	e, err = again.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", e.Password)
}

func TestChangeMasterPassword_RequiresUnlocked(t *testing.T) {
	v := initVault(t, "")
	v.Lock()
	_, err := v.ChangeMasterPassword("abcdefgh", "x")
	assert.ErrorIs(t, err, ErrVaultLocked)
}

func TestFileNeverContainsPlaintext(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vault.db")
	v := initVault(t, p)
	_, err := v.Add("very-unique-association", "very-unique-user", "very-unique-password")
	require.NoError(t, err)
	require.NoError(t, v.Close())

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	for _, s := range []string{"very-unique-association", "very-unique-user", "very-unique-password", "abcdefgh"} {
		assert.Falsef(t, bytes.Contains(raw, []byte(s)), "vault file contains %q in plaintext", s)
	}
}

func TestSeparatePathsAreIndependentVaults(t *testing.T) {
	dir := t.TempDir()
	a := initVault(t, filepath.Join(dir, "a.db"))
	_, err := a.Add("only-in-a", "u", "p")
	require.NoError(t, err)

	b := openTestVault(t, filepath.Join(dir, "b.db"))
	assert.False(t, b.HasMasterPassword())
	ok, err := b.Unlock("abcdefgh")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpecialCharacterPaths(t *testing.T) {
	cases := []struct {
		name    string
		sibling string
	}{
		{"vault%41.db", "vaultA.db"},
		{"my#vault.db", "my"},
		{"a?b.db", "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			p := filepath.Join(dir, tc.name)
			v := initVault(t, p)
			_, err := v.Add("site", "user", "pw")
			require.NoError(t, err)

			fi, err := os.Stat(p)
			require.NoError(t, err)
			assert.Positive(t, fi.Size(), "vault data must land in the named file")
			_, err = os.Stat(filepath.Join(dir, tc.sibling))
			assert.True(t, os.IsNotExist(err), "unexpected file %s", tc.sibling)
		})
	}
}

func TestHashSuffixedPathsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	a := initVault(t, filepath.Join(dir, "a#1.db"))
	_, err := a.Add("only-in-one", "u", "p")
	require.NoError(t, err)

	b := openTestVault(t, filepath.Join(dir, "a#2.db"))
	require.False(t, b.HasMasterPassword())
	created, err := b.SetMasterPassword("abcdefgh")
	require.NoError(t, err)
	assert.True(t, created)
	_, err = b.Add("only-in-two", "u", "p")
	require.NoError(t, err)

	ea, err := a.GetAll()
	require.NoError(t, err)
	eb, err := b.GetAll()
	require.NoError(t, err)
	require.Len(t, ea, 1)
	require.Len(t, eb, 1)
	assert.Equal(t, "only-in-one", ea[0].Association)
	assert.Equal(t, "only-in-two", eb[0].Association)
}

func TestTamperedRowIsCorrupted(t *testing.T) {
	v := initVault(t, "")
	id, err := v.Add("a", "b", "c")
	require.NoError(t, err)
	other, err := v.Add("x", "y", "z")
	require.NoError(t, err)

	// Move the sealed payload of `other` into `id`: the associated data
	// binding must reject it.
	v.mu.Lock()
	src, err := v.store.GetEntry(t.Context(), other)
	require.NoError(t, err)
	_, err = v.store.UpdateEntry(t.Context(), id, func(int64) ([]byte, []byte, error) {
		return src.Nonce, src.Ciphertext, nil
	})
	v.mu.Unlock()
	require.NoError(t, err)

	_, err = v.GetByID(id)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestSnapshotIsCompleteVault(t *testing.T) {
	v := initVault(t, "")
	_, err := v.Add("a", "b", "c")
	require.NoError(t, err)
	dest := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, v.Snapshot(dest))

	c := openTestVault(t, dest)
	ok, err := c.Unlock("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	all, err := c.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	un := openTestVault(t, "")
	assert.ErrorIs(t, un.Snapshot(filepath.Join(t.TempDir(), "x.db")), ErrStorage)
}

func TestClosedVault(t *testing.T) {
	v := initVault(t, "")
	require.NoError(t, v.Close())
	assert.True(t, v.IsLocked())
	_, err := v.Unlock("abcdefgh")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = v.Add("a", "b", "c")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentAccessIsSerialized(t *testing.T) {
	v := initVault(t, "")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = v.Add("site", "user", "pw")
				_, _ = v.GetAll()
				v.Lock()
				_, _ = v.Unlock("abcdefgh")
			}
		}()
	}
	wg.Wait()
	_, err := v.Unlock("abcdefgh")
	require.NoError(t, err)
	all, err := v.GetAll()
	require.NoError(t, err)
	n, err := v.EntryCount()
	require.NoError(t, err)
	assert.Equal(t, n, len(all))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "locked", StateLocked.String())
	assert.Equal(t, "unlocked", StateUnlocked.String())
	assert.Equal(t, "unknown", State(99).String())
}
