// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phigen/phivault/internal/config"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/phigen/phivault/internal/vault"
)

func (m *Model) onUnlock() tea.Cmd {
	u := &m.unlock
	if u.setup && u.focus == 0 {
		u.setFocus(1)
		return nil
	}
	pw := u.inputs[0].Value()
	v := m.vault()

	if u.setup {
		if len([]rune(pw)) < m.opts.MinMasterLength {
			m.err = errors.New(i18n.T("tui.err.master_too_short", m.opts.MinMasterLength))
			return nil
		}
		if pw != u.inputs[1].Value() {
			m.err = errors.New(i18n.T("tui.err.master_mismatch"))
			u.reset()
			return nil
		}
		m.busy = true
		return func() tea.Msg {
			ok, err := v.SetMasterPassword(pw)
			return unlockResultMsg{ok: ok, setup: true, err: err}
		}
	}

	m.busy = true
	return func() tea.Msg {
		ok, err := v.Unlock(pw)
		return unlockResultMsg{ok: ok, err: err}
	}
}

func (m *Model) onUnlockResult(msg unlockResultMsg) {
	m.busy = false
	m.unlock.reset()
	switch {
	case msg.err != nil:
		m.err = msg.err
	case !msg.ok && msg.setup:
		// Someone initialized the file in the meantime.
		m.err = errors.New(i18n.T("tui.err.already_initialized"))
		m.unlock = newUnlockModel(false)
	case !msg.ok:
		m.err = errors.New(i18n.T("tui.err.wrong_master"))
	default:
		m.err = nil
		if msg.setup {
			m.status = i18n.T("tui.status.created")
		} else {
			m.status = i18n.T("tui.status.unlocked")
		}
		m.timer.Touch()
		m.toList()
	}
}

func (m *Model) onLock() tea.Cmd {
	m.vault().Lock()
	m.toLocked(i18n.T("tui.status.locked"))
	return nil
}

func (m *Model) onQuit() tea.Cmd {
	m.timer.Stop()
	return tea.Quit
}

func (m *Model) onAdd() tea.Cmd {
	m.form = newFormModel(nil)
	m.state = formView
	return m.form.init()
}

func (m *Model) onEdit() tea.Cmd {
	e := m.list.selected()
	if e == nil {
		return nil
	}
	m.form = newFormModel(e)
	m.state = formView
	return m.form.init()
}

func (m *Model) onBack() tea.Cmd {
	switch m.state {
	case formView:
		m.form = formModel{}
		m.toList()
	case switchView:
		m.enterVaultState()
	}
	return nil
}

// onGenerate fills the form's password field, opening an add form first when
// pressed on the list.
func (m *Model) onGenerate() tea.Cmd {
	var cmd tea.Cmd
	if m.state == listView {
		cmd = m.onAdd()
	}
	pw, err := passgen.Generate(m.opts.GenLength, m.opts.Charset)
	if err != nil {
		m.err = err
		return cmd
	}
	m.form.setPassword(pw)
	s := passgen.CalculateStrength(pw)
	m.status = i18n.T("tui.status.generated", len(pw), i18n.T("strength."+string(s.Label)), s.Score)
	return cmd
}

func (m *Model) onSave() tea.Cmd {
	switch m.state {
	case formView:
		return m.saveEntry()
	case switchView:
		return m.switchVault()
	}
	return nil
}

func (m *Model) saveEntry() tea.Cmd {
	f := &m.form
	if f.focus < len(f.inputs)-1 {
		f.setFocus(f.focus + 1)
		return nil
	}
	assoc, user, pw := f.values()
	v := m.vault()

	var err error
	var id int64
	if f.editing != nil {
		id = f.editing.ID
		err = v.Update(id, vault.EntryUpdate{Association: &assoc, Username: &user, Password: &pw})
	} else {
		id, err = v.Add(assoc, user, pw)
	}
	if err != nil {
		m.err = m.describe(err)
		if errors.Is(err, vault.ErrVaultLocked) {
			m.toLocked("")
		}
		return nil
	}

	if f.editing != nil {
		m.status = i18n.T("tui.status.updated", strings.TrimSpace(assoc))
	} else {
		m.status = i18n.T("tui.status.added", strings.TrimSpace(assoc))
	}
	m.form = formModel{}
	m.toList()
	m.list.selectID(id)
	return nil
}

func (m *Model) onCopy() tea.Cmd {
	e := m.list.selected()
	if e == nil || m.opts.Clipboard == nil {
		return nil
	}
	done, err := m.opts.Clipboard.Copy(e.Password)
	if err != nil {
		m.err = err
		return nil
	}
	if done == nil {
		m.status = i18n.T("tui.status.copied", e.Association)
		return nil
	}
	m.status = i18n.T("tui.status.copied_clear", e.Association, m.opts.Clipboard.ClearAfter().String())
	return func() tea.Msg {
		<-done
		return clipboardClearedMsg{}
	}
}

func (m *Model) onDelete() tea.Cmd {
	e := m.list.selected()
	if e == nil {
		return nil
	}
	m.list.confirmID = e.ID
	m.status = i18n.T("tui.confirm.delete", e.Association, e.Username)
	return nil
}

func (m *Model) confirmDelete(msg tea.KeyMsg) tea.Cmd {
	id := m.list.confirmID
	m.list.confirmID = 0
	if msg.String() != "y" && msg.String() != "Y" {
		m.status = i18n.T("tui.status.cancelled")
		return nil
	}
	if err := m.vault().Delete(id); err != nil {
		m.err = m.describe(err)
		if errors.Is(err, vault.ErrVaultLocked) {
			m.toLocked("")
		}
		return nil
	}
	m.status = i18n.T("tui.status.deleted")
	m.toList()
	return nil
}

func (m *Model) onSwitchVault() tea.Cmd {
	if m.opts.Open == nil {
		return nil
	}
	m.sw = newSwitchModel(m.vault().Path())
	m.state = switchView
	return m.sw.init()
}

// onReveal toggles masking of the password field on the form.
func (m *Model) onReveal() tea.Cmd {
	m.form.toggleReveal()
	return nil
}

func (m *Model) switchVault() tea.Cmd {
	raw := strings.TrimSpace(m.sw.input.Value())
	if raw == "" {
		m.err = errors.New(i18n.T("tui.err.path_empty"))
		return nil
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		m.err = err
		return nil
	}
	if samePath(path, m.vault().Path()) {
		m.enterVaultState()
		return nil
	}
	next, err := m.opts.Open(path)
	if err != nil {
		m.err = m.describe(err)
		return nil
	}

	m.timer.Stop()
	prev := m.ref.get()
	m.ref.set(next)
	if err := prev.Close(); err != nil {
		logging.Warnf("tui: close %s: %v", prev.Path(), err)
	}
	logging.Infof("tui: switched vault to %s", path)
	m.list = listModel{}
	m.form = formModel{}
	m.enterVaultState()
	m.status = i18n.T("tui.status.switched", path)
	return nil
}

// describe turns vault errors into user-facing text.
func (m *Model) describe(err error) error {
	var ve *vault.ValidationError
	switch {
	case errors.As(err, &ve):
		return errors.New(i18n.T("tui.err.field_required", ve.Field))
	case errors.Is(err, vault.ErrVaultLocked):
		return errors.New(i18n.T("tui.err.locked"))
	case errors.Is(err, vault.ErrNotFound):
		return errors.New(i18n.T("tui.err.not_found"))
	case errors.Is(err, vault.ErrStorage):
		return errors.New(i18n.T("tui.err.storage", err.Error()))
	}
	return err
}

// samePath reports whether a and b name the same vault file once made
// absolute and cleaned.
func samePath(a, b string) bool {
	return absPath(a) == absPath(b)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
