package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phigen/phivault/internal/model"
	"github.com/uptrace/bun"
)

// VaultMetaModel maps the single-row `vault_meta` table.
type VaultMetaModel struct {
	bun.BaseModel `bun:"table:vault_meta"`
	ID            int       `bun:"id,pk"`
	VaultID       string    `bun:"vault_id"`
	Salt          []byte    `bun:"salt"`
	KDFTime       int64     `bun:"kdf_time"`
	KDFMemory     int64     `bun:"kdf_memory"`
	KDFThreads    int64     `bun:"kdf_threads"`
	KDFKeyLen     int64     `bun:"kdf_key_len"`
	Verifier      []byte    `bun:"verifier"`
	CreatedAt     time.Time `bun:"created_at"`
}

// EntryModel maps `entries`. Only ciphertext is stored.
type EntryModel struct {
	bun.BaseModel `bun:"table:entries"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Nonce         []byte `bun:"nonce"`
	Ciphertext    []byte `bun:"ciphertext"`
}

func metaModelFromModel(m model.VaultMeta) VaultMetaModel {
	return VaultMetaModel{
		ID:         1,
		VaultID:    m.VaultID.String(),
		Salt:       m.Salt,
		KDFTime:    int64(m.KDF.Time),
		KDFMemory:  int64(m.KDF.MemoryKiB),
		KDFThreads: int64(m.KDF.Threads),
		KDFKeyLen:  int64(m.KDF.KeyLen),
		Verifier:   m.Verifier,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

func metaModelToModel(mm VaultMetaModel) (model.VaultMeta, error) {
	id, err := uuid.Parse(mm.VaultID)
	if err != nil {
		return model.VaultMeta{}, fmt.Errorf("parse vault id: %w", err)
	}
	if mm.KDFTime < 0 || mm.KDFMemory < 0 || mm.KDFThreads < 0 || mm.KDFThreads > 255 || mm.KDFKeyLen < 0 {
		return model.VaultMeta{}, fmt.Errorf("kdf parameters out of range")
	}
	return model.VaultMeta{
		VaultID: id,
		Salt:    mm.Salt,
		KDF: model.KDFParams{
			Time:      uint32(mm.KDFTime),
			MemoryKiB: uint32(mm.KDFMemory),
			Threads:   uint8(mm.KDFThreads),
			KeyLen:    uint32(mm.KDFKeyLen),
		},
		Verifier:  mm.Verifier,
		CreatedAt: mm.CreatedAt,
	}, nil
}

func entryModelToModel(em EntryModel) model.SealedEntry {
	return model.SealedEntry{ID: em.ID, Nonce: em.Nonce, Ciphertext: em.Ciphertext}
}
