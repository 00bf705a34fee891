// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/model"
	"github.com/phigen/phivault/internal/passgen"
)

const (
	fieldAssociation = iota
	fieldUsername
	fieldPassword
)

// formModel adds a new entry or edits an existing one.
type formModel struct {
	inputs  []textinput.Model
	focus   int
	editing *model.Entry // nil when adding
}

func newFormModel(editing *model.Entry) formModel {
	f := formModel{inputs: make([]textinput.Model, 3), editing: editing}
	for i := range f.inputs {
		t := textinput.New()
		t.CharLimit = 256
		t.Width = 40
		switch i {
		case fieldAssociation:
			t.Prompt = fmt.Sprintf("%-12s ", i18n.T("tui.form.association"))
			t.Placeholder = "gmail.com"
		case fieldUsername:
			t.Prompt = fmt.Sprintf("%-12s ", i18n.T("tui.form.username"))
			t.Placeholder = "me@example.com"
		case fieldPassword:
			t.Prompt = fmt.Sprintf("%-12s ", i18n.T("tui.form.password"))
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		f.inputs[i] = t
	}
	if editing != nil {
		f.inputs[fieldAssociation].SetValue(editing.Association)
		f.inputs[fieldUsername].SetValue(editing.Username)
		f.inputs[fieldPassword].SetValue(editing.Password)
	}
	f.setFocus(0)
	return f
}

func (f formModel) init() tea.Cmd { return textinput.Blink }

func (f *formModel) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	if i < 0 {
		i = len(f.inputs) - 1
	}
	if i >= len(f.inputs) {
		i = 0
	}
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *formModel) setPassword(pw string) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[fieldPassword].SetValue(pw)
	f.setFocus(fieldPassword)
}

// toggleReveal switches the password field between masked and plain text.
func (f *formModel) toggleReveal() {
	if len(f.inputs) == 0 {
		return
	}
	in := &f.inputs[fieldPassword]
	if in.EchoMode == textinput.EchoPassword {
		in.EchoMode = textinput.EchoNormal
	} else {
		in.EchoMode = textinput.EchoPassword
	}
}

func (f formModel) values() (association, username, password string) {
	return f.inputs[fieldAssociation].Value(), f.inputs[fieldUsername].Value(), f.inputs[fieldPassword].Value()
}

func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f formModel) view(s styles) string {
	title := i18n.T("tui.form.add_title")
	if f.editing != nil {
		title = i18n.T("tui.form.edit_title", f.editing.ID)
	}
	lines := []string{s.title.Render("✨ " + title)}
	for i, in := range f.inputs {
		style := s.text
		if i == f.focus {
			style = s.focused
		}
		lines = append(lines, style.Render(in.View()))
	}

	if pw := f.inputs[fieldPassword].Value(); pw != "" {
		st := passgen.CalculateStrength(pw)
		lines = append(lines, s.strength(st.Label).Render(
			i18n.T("tui.form.strength", i18n.T("strength."+string(st.Label)), st.Score)))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, s.help.Render(i18n.T("tui.form.hint")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
