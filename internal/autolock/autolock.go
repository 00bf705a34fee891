// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package autolock locks a vault after a period without user activity.
package autolock

import (
	"sync"
	"time"

	"github.com/phigen/phivault/internal/logging"
)

// Locker is anything that can be locked; *vault.Vault satisfies it.
type Locker interface {
	Lock()
}

// Timer calls Lock on its target once Timeout passes without a Touch.
// A zero or negative timeout disables it.
type Timer struct {
	mu      sync.Mutex
	timeout time.Duration
	target  Locker
	t       *time.Timer
	fired   chan struct{}
	gen     uint64
}

// New returns a stopped timer; call Touch to arm it.
func New(timeout time.Duration, target Locker) *Timer {
	return &Timer{timeout: timeout, target: target, fired: make(chan struct{}, 1)}
}

// Timeout returns the configured inactivity window.
func (a *Timer) Timeout() time.Duration { return a.timeout }

// Fired delivers one value each time the timer locks the target. Pending
// values are coalesced.
func (a *Timer) Fired() <-chan struct{} { return a.fired }

// Touch records activity and restarts the countdown.
func (a *Timer) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timeout <= 0 || a.target == nil {
		return
	}
	if a.t != nil {
		a.t.Stop()
	}
	a.gen++
	gen := a.gen
	a.t = time.AfterFunc(a.timeout, func() { a.expire(gen) })
}

// Stop disarms the timer without locking.
func (a *Timer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if a.t != nil {
		a.t.Stop()
		a.t = nil
	}
}

// expire runs on the timer goroutine. A Touch or Stop since arming bumps gen
// and turns a late expiry into a no-op.
func (a *Timer) expire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.t = nil
	a.gen++
	a.mu.Unlock()

	logging.Infof("autolock: no activity for %s, locking vault", a.timeout)
	a.target.Lock()
	select {
	case a.fired <- struct{}{}:
	default:
	}
}
