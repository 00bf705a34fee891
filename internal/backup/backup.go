// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and restores Zstandard-compressed copies of a vault
// file. Entries stay encrypted: a backup is only as readable as the vault.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/phigen/phivault/internal/logging"
)

// Extension is appended to backup names that lack it.
const Extension = ".zst"

// sqliteMagic is the header every sqlite database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

var (
	// ErrExists is returned when Restore would overwrite a file.
	ErrExists = errors.New("backup: destination already exists")
	// ErrNotVault is returned when a backup does not decompress to a vault.
	ErrNotVault = errors.New("backup: archive does not contain a vault file")
)

// Snapshotter produces a consistent copy of a vault at dest.
type Snapshotter interface {
	Snapshot(dest string) error
}

// DefaultName returns phivault-backup-YYYY-MM-DD.db.zst for now.
func DefaultName(now time.Time) string {
	return fmt.Sprintf("phivault-backup-%s.db%s", now.Format("2006-01-02"), Extension)
}

// NormalizeName appends Extension when missing.
func NormalizeName(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// Export snapshots v and writes the compressed copy to out with mode 0600.
func Export(v Snapshotter, out string) error {
	tmpDir, err := os.MkdirTemp(filepath.Dir(out), ".phivault-backup-*")
	if err != nil {
		return fmt.Errorf("backup: temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	snap := filepath.Join(tmpDir, "vault.db")
	if err := v.Snapshot(snap); err != nil {
		return fmt.Errorf("backup: snapshot: %w", err)
	}

	src, err := os.Open(snap)
	if err != nil {
		return fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer func() { _ = src.Close() }()

	file, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("backup: could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zw, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("backup: could not create zstd writer: %w", err)
	}
	n, err := io.Copy(zw, src)
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("backup: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("backup: finish zstd stream: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("backup: sync: %w", err)
	}
	logging.Infof("backup: wrote %s (%d bytes uncompressed)", out, n)
	return nil
}

// Restore decompresses in to dest. It refuses to overwrite an existing file
// and checks that the result is a sqlite database before moving it in place.
func Restore(in, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup: stat %s: %w", dest, err)
	}

	file, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("backup: could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return fmt.Errorf("backup: could not create zstd reader: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("backup: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".phivault-restore-*")
	if err != nil {
		return fmt.Errorf("backup: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("backup: chmod: %w", err)
	}
	if _, err := io.Copy(tmp, zr); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("backup: decompress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("backup: close: %w", err)
	}
	if err := checkMagic(tmpName); err != nil {
		return err
	}

	// Link refuses to replace dest if it appeared in the meantime.
	if err := os.Link(tmpName, dest); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, dest)
		}
		return fmt.Errorf("backup: move into place: %w", err)
	}
	logging.Infof("backup: restored %s to %s", in, dest)
	return nil
}

func checkMagic(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	defer func() { _ = f.Close() }()
	head := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteMagic) {
		return ErrNotVault
	}
	return nil
}
