// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/model"
)

// listModel is the entry table of an unlocked vault.
type listModel struct {
	entries   []model.Entry
	cursor    int
	confirmID int64 // entry awaiting delete confirmation, 0 if none
}

func (l *listModel) setEntries(entries []model.Entry) {
	l.entries = entries
	if l.cursor >= len(entries) {
		l.cursor = len(entries) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listModel) selected() *model.Entry {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return nil
	}
	e := l.entries[l.cursor]
	return &e
}

func (l *listModel) selectID(id int64) {
	for i, e := range l.entries {
		if e.ID == id {
			l.cursor = i
			return
		}
	}
}

func (l *listModel) update(msg tea.Msg) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}
	switch k.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.entries)-1 {
			l.cursor++
		}
	case "home":
		l.cursor = 0
	case "end":
		if len(l.entries) > 0 {
			l.cursor = len(l.entries) - 1
		}
	}
}

func (l listModel) view(s styles, path string) string {
	title := s.title.Render("🔓 " + i18n.T("tui.list.title", len(l.entries)))
	sub := s.label.Render(i18n.T("tui.vault_path", path))
	if len(l.entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, sub, "", s.help.Render(i18n.T("tui.list.empty")))
	}

	header := s.label.Render(fmt.Sprintf("   %-4s %-28s %-24s %s",
		i18n.T("tui.list.col_id"), i18n.T("tui.list.col_association"),
		i18n.T("tui.list.col_username"), i18n.T("tui.list.col_password")))
	var b strings.Builder
	for i, e := range l.entries {
		row := fmt.Sprintf("%-4d %-28s %-24s %s", e.ID, truncate(e.Association, 28), truncate(e.Username, 24), e.MaskedPassword())
		if i == l.cursor {
			b.WriteString(s.selected.Render("▸ " + row))
		} else {
			b.WriteString(s.item.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, sub, "", header, strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
