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

// switchModel prompts for another vault location. Each path is its own
// vault; nothing is copied between them.
type switchModel struct {
	input textinput.Model
}

func newSwitchModel(current string) switchModel {
	t := textinput.New()
	t.Prompt = i18n.T("tui.switch.prompt") + " "
	t.CharLimit = 1024
	t.Width = 50
	t.SetValue(current)
	t.CursorEnd()
	t.Focus()
	return switchModel{input: t}
}

func (s switchModel) init() tea.Cmd { return textinput.Blink }

func (s *switchModel) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s switchModel) view(st styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render("📂 "+i18n.T("tui.switch.title")),
		st.help.Render(i18n.T("tui.switch.hint")),
		"",
		st.dialog.Render(s.input.View()),
	)
}
