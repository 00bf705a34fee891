// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phigen/phivault/internal/crypto/vaultkey"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/model"
	"github.com/phigen/phivault/internal/security"
)

// EntryUpdate lists the fields to change. Nil fields are left alone.
type EntryUpdate struct {
	Association *string
	Username    *string
	Password    *string
}

// payload is the sealed JSON document stored per entry.
type payload struct {
	Association string    `json:"a"`
	Username    string    `json:"u"`
	Password    string    `json:"p"`
	CreatedAt   time.Time `json:"c"`
	UpdatedAt   time.Time `json:"m"`
}

// Add stores a new entry and returns its id. Every field must be non-empty
// after trimming; association and username are stored trimmed, the password
// verbatim.
func (v *Vault) Add(association, username, password string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return 0, err
	}
	p := payload{
		Association: strings.TrimSpace(association),
		Username:    strings.TrimSpace(username),
		Password:    password,
	}
	if err := validateFields(p.Association, p.Username, p.Password); err != nil {
		return 0, err
	}
	now := v.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	id, err := v.store.InsertEntry(context.Background(), func(id int64) ([]byte, []byte, error) {
		return v.seal(id, p)
	})
	if err != nil {
		return 0, v.storageErr("add", err)
	}
	logging.Debugf("vault: added entry %d", id)
	return id, nil
}

// GetAll decrypts every entry, in insertion order.
func (v *Vault) GetAll() ([]model.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}
	rows, err := v.store.ListEntries(context.Background())
	if err != nil {
		return nil, v.storageErr("list", err)
	}
	out := make([]model.Entry, 0, len(rows))
	for _, se := range rows {
		e, err := v.open(se)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GetByID returns the entry or nil when id does not exist.
func (v *Vault) GetByID(id int64) (*model.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}
	se, err := v.store.GetEntry(context.Background(), id)
	if err != nil {
		return nil, v.storageErr("get", err)
	}
	if se == nil {
		return nil, nil
	}
	e, err := v.open(*se)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes id. A missing id is not an error.
func (v *Vault) Delete(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return err
	}
	if err := v.store.DeleteEntry(context.Background(), id); err != nil {
		return v.storageErr("delete", err)
	}
	logging.Debugf("vault: deleted entry %d", id)
	return nil
}

// Update changes the given fields of id. Unlike Delete, a missing id is an
// error (ErrNotFound).
func (v *Vault) Update(id int64, upd EntryUpdate) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireUnlocked(); err != nil {
		return err
	}

	ctx := context.Background()
	se, err := v.store.GetEntry(ctx, id)
	if err != nil {
		return v.storageErr("update", err)
	}
	if se == nil {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	cur, err := v.open(*se)
	if err != nil {
		return err
	}

	p := payload{
		Association: cur.Association,
		Username:    cur.Username,
		Password:    cur.Password,
		CreatedAt:   cur.CreatedAt,
	}
	if upd.Association != nil {
		p.Association = strings.TrimSpace(*upd.Association)
	}
	if upd.Username != nil {
		p.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Password != nil {
		p.Password = *upd.Password
	}
	if err := validateFields(p.Association, p.Username, p.Password); err != nil {
		return err
	}
	p.UpdatedAt = v.now().UTC()

	found, err := v.store.UpdateEntry(ctx, id, func(id int64) ([]byte, []byte, error) {
		return v.seal(id, p)
	})
	if err != nil {
		return v.storageErr("update", err)
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	logging.Debugf("vault: updated entry %d", id)
	return nil
}

func validateFields(association, username, password string) error {
	switch {
	case association == "":
		return &ValidationError{Field: "association", Reason: "must not be empty"}
	case username == "":
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	case strings.TrimSpace(password) == "":
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}

// associatedData binds a ciphertext to this vault and row so sealed payloads
// cannot be moved between rows or vaults.
func (v *Vault) associatedData(id int64) []byte {
	return []byte(v.meta.VaultID.String() + ":" + strconv.FormatInt(id, 10))
}

func (v *Vault) seal(id int64, p payload) ([]byte, []byte, error) {
	plain, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	defer wipe(plain)
	var nonce, ct []byte
	err = v.key.Use(func(k []byte) error {
		var err error
		nonce, ct, err = vaultkey.Seal(k, plain, v.associatedData(id))
		return err
	})
	return nonce, ct, err
}

func (v *Vault) open(se model.SealedEntry) (model.Entry, error) {
	var plain []byte
	err := v.key.Use(func(k []byte) error {
		var err error
		plain, err = vaultkey.Open(k, se.Nonce, se.Ciphertext, v.associatedData(se.ID))
		return err
	})
	if err != nil {
		return model.Entry{}, v.storageErr("decrypt", fmt.Errorf("%w: entry %d: %v", ErrCorrupted, se.ID, err))
	}
	defer wipe(plain)
	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return model.Entry{}, v.storageErr("decode", fmt.Errorf("%w: entry %d: %v", ErrCorrupted, se.ID, err))
	}
	return model.Entry{
		ID:          se.ID,
		Association: p.Association,
		Username:    p.Username,
		Password:    p.Password,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func wipe(b []byte) { security.Wipe(b) }
