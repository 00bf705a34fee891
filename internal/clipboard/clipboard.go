// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package clipboard copies secrets to the system clipboard and wipes them
// again after a delay, unless the user has copied something else meanwhile.
package clipboard

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/phigen/phivault/internal/logging"
)

// ErrUnsupported is returned when no clipboard backend is available
// (e.g. no xclip/xsel/wl-copy on Linux).
var ErrUnsupported = errors.New("clipboard: not supported on this system")

// Manager owns the pending auto-clear for the most recent copy.
type Manager struct {
	clearAfter time.Duration
	supported  bool
	write      func(string) error
	read       func() (string, error)

	mu   sync.Mutex
	gen  uint64
	t    *time.Timer
	sum  [sha256.Size]byte
	done chan struct{}
}

// New returns a Manager backed by the system clipboard. clearAfter <= 0
// disables auto-clear.
func New(clearAfter time.Duration) *Manager {
	return &Manager{
		clearAfter: clearAfter,
		supported:  !clipboard.Unsupported,
		write:      clipboard.WriteAll,
		read:       clipboard.ReadAll,
	}
}

// ClearAfter returns the auto-clear delay.
func (m *Manager) ClearAfter() time.Duration { return m.clearAfter }

// Copy places text on the clipboard and schedules its removal. The returned
// channel is closed once the clear has run (or was skipped because the
// clipboard changed); it is nil when auto-clear is disabled. A new Copy
// replaces the previous schedule.
func (m *Manager) Copy(text string) (<-chan struct{}, error) {
	if !m.supported {
		return nil, ErrUnsupported
	}
	if err := m.write(text); err != nil {
		return nil, fmt.Errorf("clipboard: write: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	if m.clearAfter <= 0 {
		return nil, nil
	}
	m.gen++
	gen := m.gen
	m.sum = sha256.Sum256([]byte(text))
	m.done = make(chan struct{})
	done := m.done
	m.t = time.AfterFunc(m.clearAfter, func() { m.expire(gen) })
	logging.Debugf("clipboard: copied, clearing in %s", m.clearAfter)
	return done, nil
}

// ClearNow runs the pending clear immediately, if any.
func (m *Manager) ClearNow() {
	m.mu.Lock()
	gen := m.gen
	pending := m.t != nil
	m.mu.Unlock()
	if pending {
		m.expire(gen)
	}
}

// Stop cancels the pending clear without touching the clipboard.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

func (m *Manager) cancelLocked() {
	if m.t != nil {
		m.t.Stop()
		m.t = nil
	}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.gen++
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.t = nil

	cur, err := m.read()
	switch {
	case err != nil:
		logging.Warnf("clipboard: read before clear failed: %v", err)
	case subtle.ConstantTimeCompare(m.sum[:], sha256Sum(cur)) != 1:
		logging.Debugf("clipboard: content changed, leaving it alone")
	default:
		if err := m.write(""); err != nil {
			logging.Warnf("clipboard: clear failed: %v", err)
		} else {
			logging.Debugf("clipboard: cleared")
		}
	}

	m.sum = [sha256.Size]byte{}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.gen++
}

func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
