// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phigen/phivault/internal/i18n"
)

// unlockModel asks for the master password. In setup mode (uninitialized
// vault) it asks twice.
type unlockModel struct {
	setup  bool
	inputs []textinput.Model // 0: password, 1: confirmation (setup only)
	focus  int
}

func newUnlockModel(setup bool) unlockModel {
	n := 1
	if setup {
		n = 2
	}
	u := unlockModel{setup: setup, inputs: make([]textinput.Model, n)}
	for i := range u.inputs {
		t := textinput.New()
		t.EchoMode = textinput.EchoPassword
		t.EchoCharacter = '•'
		t.CharLimit = 256
		t.Width = 40
		switch i {
		case 0:
			t.Prompt = i18n.T("tui.unlock.password") + " "
		case 1:
			t.Prompt = i18n.T("tui.unlock.confirm") + " "
		}
		u.inputs[i] = t
	}
	u.inputs[0].Focus()
	return u
}

func (u *unlockModel) setFocus(i int) {
	if i < 0 {
		i = len(u.inputs) - 1
	}
	if i >= len(u.inputs) {
		i = 0
	}
	u.focus = i
	for j := range u.inputs {
		if j == i {
			u.inputs[j].Focus()
		} else {
			u.inputs[j].Blur()
		}
	}
}

// reset clears typed passwords.
func (u *unlockModel) reset() {
	for i := range u.inputs {
		u.inputs[i].Reset()
	}
	u.setFocus(0)
}

func (u *unlockModel) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			u.setFocus(u.focus + 1)
			return nil
		case "shift+tab", "up":
			u.setFocus(u.focus - 1)
			return nil
		}
	}
	var cmd tea.Cmd
	if len(u.inputs) > 0 {
		u.inputs[u.focus], cmd = u.inputs[u.focus].Update(msg)
	}
	return cmd
}

func (u unlockModel) view(s styles, path string) string {
	title := i18n.T("tui.unlock.title")
	hint := i18n.T("tui.unlock.hint")
	if u.setup {
		title = i18n.T("tui.setup.title")
		hint = i18n.T("tui.setup.hint")
	}
	lines := []string{
		s.title.Render("🔐 " + title),
		s.label.Render(i18n.T("tui.vault_path", path)),
		s.help.Render(hint),
		"",
	}
	for i, in := range u.inputs {
		style := s.text
		if i == u.focus {
			style = s.focused
		}
		lines = append(lines, style.Render(in.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
