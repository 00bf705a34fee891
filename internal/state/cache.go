// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package state holds transient process-wide values that must be passed
// between the CLI front-end and the commands it dispatches to, such as a
// master password read once from stdin.
package state

import (
	"sync"

	"github.com/phigen/phivault/internal/security"
)

// MasterPassword is the process mailbox for a master password supplied
// non-interactively (environment or stdin). Values are copied in and out so
// every holder can wipe its own copy.
var MasterPassword = &mailbox{}

type mailbox struct {
	mu    sync.RWMutex
	value security.Secret
}

// Set stores a copy of pass, replacing and wiping any previous value.
func (m *mailbox) Set(pass []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value.Zero()
	if pass == nil {
		return
	}
	m.value = security.FromBytes(pass)
}

// Get returns a copy of the stored password, or nil. The caller wipes it.
func (m *mailbox) Get() security.Secret {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil {
		return nil
	}
	return security.FromBytes(m.value)
}

// Has reports whether a password is stored.
func (m *mailbox) Has() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value != nil
}

// Clear wipes the stored password.
func (m *mailbox) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value.Zero()
}
