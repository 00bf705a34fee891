package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/phigen/phivault/internal/testutil"
	"github.com/phigen/phivault/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T, dir string) *vault.Vault {
	t.Helper()
	v, err := vault.Open(filepath.Join(dir, "vault.db"), vault.WithKDFParams(testutil.FastKDF))
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	ok, err := v.SetMasterPassword("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func TestExportRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	v := newVault(t, dir)
	_, err := v.Add("gmail.com", "me", "Xy9!zz12")
	require.NoError(t, err)
	_, err = v.Add("github.com", "octo", "hunter2hunter2")
	require.NoError(t, err)

	archive := filepath.Join(dir, DefaultName(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, Export(v, archive))
	fi, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	dest := filepath.Join(dir, "restored", "vault.db")
	require.NoError(t, Restore(archive, dest))

	r, err := vault.Open(dest)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	ok, err := r.Unlock("abcdefgh")
	require.NoError(t, err)
	require.True(t, ok)

	want, err := v.GetAll()
	require.NoError(t, err)
	got, err := r.GetAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRestore_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	v := newVault(t, dir)
	archive := filepath.Join(dir, "b.db.zst")
	require.NoError(t, Export(v, archive))

	dest := filepath.Join(dir, "existing.db")
	require.NoError(t, os.WriteFile(dest, []byte("keep me"), 0o600))
	err := Restore(archive, dest)
	assert.True(t, errors.Is(err, ErrExists), "got %v", err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))
}

func TestRestore_RejectsNonVault(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "junk.zst")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte("definitely not sqlite, just text"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := filepath.Join(dir, "out.db")
	err = Restore(archive, dest)
	assert.ErrorIs(t, err, ErrNotVault)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRestore_RejectsNonZstd(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "plain.zst")
	require.NoError(t, os.WriteFile(archive, []byte("not compressed"), 0o600))
	assert.Error(t, Restore(archive, filepath.Join(dir, "out.db")))
}

func TestExport_UninitializedVault(t *testing.T) {
	dir := t.TempDir()
	v, err := vault.Open(filepath.Join(dir, "none.db"))
	require.NoError(t, err)
	defer func() { _ = v.Close() }()
	assert.Error(t, Export(v, filepath.Join(dir, "x.zst")))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "phivault-backup-2026-10-17.db.zst", DefaultName(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "a.zst", NormalizeName("a"))
	assert.Equal(t, "a.zst", NormalizeName("a.zst"))
}
