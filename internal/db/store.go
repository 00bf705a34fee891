// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phigen/phivault/internal/model"
	"github.com/uptrace/bun"
)

// SealFunc produces the nonce and ciphertext for a row once its id is known.
type SealFunc func(id int64) (nonce, ciphertext []byte, err error)

// Store is one open vault file.
type Store struct {
	bun  *bun.DB
	path string
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Close releases the sqlite handle.
func (s *Store) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	err := s.bun.Close()
	s.bun = nil
	return err
}

// LoadMeta returns the vault metadata, or (nil, nil) for a file that was never
// initialized.
func (s *Store) LoadMeta(ctx context.Context) (*model.VaultMeta, error) {
	var mm VaultMetaModel
	err := s.bun.NewSelect().Model(&mm).Where("id = ?", 1).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, MapDBError(err)
	}
	m, err := metaModelToModel(mm)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMeta writes the metadata row. It fails with ErrDuplicate when the
// vault is already initialized.
func (s *Store) CreateMeta(ctx context.Context, meta model.VaultMeta) error {
	mm := metaModelFromModel(meta)
	if _, err := s.bun.NewInsert().Model(&mm).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

// InsertEntry reserves a row, lets seal encrypt against the assigned id and
// stores the result, all in one transaction.
func (s *Store) InsertEntry(ctx context.Context, seal SealFunc) (int64, error) {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	em := EntryModel{Nonce: []byte{}, Ciphertext: []byte{}}
	res, err := tx.NewInsert().Model(&em).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve entry: %w", MapDBError(err))
	}
	if em.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		em.ID = id
	}

	nonce, ct, err := seal(em.ID)
	if err != nil {
		return 0, err
	}
	em.Nonce, em.Ciphertext = nonce, ct
	if _, err := tx.NewUpdate().Model(&em).Column("nonce", "ciphertext").WherePK().Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to store entry %d: %w", em.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return em.ID, nil
}

// GetEntry returns the sealed row for id or (nil, nil) when absent.
func (s *Store) GetEntry(ctx context.Context, id int64) (*model.SealedEntry, error) {
	var em EntryModel
	err := s.bun.NewSelect().Model(&em).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	se := entryModelToModel(em)
	return &se, nil
}

// ListEntries returns every sealed row in insertion order.
func (s *Store) ListEntries(ctx context.Context) ([]model.SealedEntry, error) {
	var rows []EntryModel
	if err := s.bun.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]model.SealedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, entryModelToModel(r))
	}
	return out, nil
}

// CountEntries returns the number of stored rows. It does not need the key.
func (s *Store) CountEntries(ctx context.Context) (int, error) {
	return s.bun.NewSelect().Model((*EntryModel)(nil)).Count(ctx)
}

// UpdateEntry replaces the sealed payload of id. It reports false when the row
// does not exist.
func (s *Store) UpdateEntry(ctx context.Context, id int64, seal SealFunc) (bool, error) {
	nonce, ct, err := seal(id)
	if err != nil {
		return false, err
	}
	em := EntryModel{ID: id, Nonce: nonce, Ciphertext: ct}
	res, err := s.bun.NewUpdate().Model(&em).Column("nonce", "ciphertext").WherePK().Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEntry removes id. Deleting a missing row is not an error.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	_, err := s.bun.NewDelete().Model((*EntryModel)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// Rekey replaces the metadata and every sealed row atomically. Used when the
// master password changes.
func (s *Store) Rekey(ctx context.Context, meta model.VaultMeta, rows []model.SealedEntry) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	mm := metaModelFromModel(meta)
	if _, err := tx.NewUpdate().Model(&mm).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update vault metadata: %w", err)
	}
	for _, r := range rows {
		em := EntryModel{ID: r.ID, Nonce: r.Nonce, Ciphertext: r.Ciphertext}
		if _, err := tx.NewUpdate().Model(&em).Column("nonce", "ciphertext").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to re-seal entry %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Snapshot writes a consistent copy of the vault file to dest using
// VACUUM INTO. dest must not exist.
func (s *Store) Snapshot(ctx context.Context, dest string) error {
	if _, err := ExecRaw(ctx, s.bun, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("snapshot to %s: %w", dest, err)
	}
	return nil
}
