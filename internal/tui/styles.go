// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/phigen/phivault/internal/passgen"
)

// Theme is the colour scheme of the TUI. Pass a modified DefaultTheme to New
// to restyle it; no view reads colours from anywhere else.
type Theme struct {
	Text    lipgloss.Color
	Label   lipgloss.Color
	Accent  lipgloss.Color
	Subtle  lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	// Strength indicator, one colour per label.
	Weak   lipgloss.Color
	Fair   lipgloss.Color
	Good   lipgloss.Color
	Strong lipgloss.Color
}

// DefaultTheme is the green-on-black PhiGEN look.
func DefaultTheme() Theme {
	return Theme{
		Text:    lipgloss.Color("#39ff14"),
		Label:   lipgloss.Color("#6fff4a"),
		Accent:  lipgloss.Color("#00ffff"),
		Subtle:  lipgloss.Color("240"),
		Error:   lipgloss.Color("#ff4444"),
		Success: lipgloss.Color("#39ff14"),
		Warning: lipgloss.Color("#ffaa00"),
		Weak:    lipgloss.Color("#ff4444"),
		Fair:    lipgloss.Color("#ffaa00"),
		Good:    lipgloss.Color("#39ff14"),
		Strong:  lipgloss.Color("#00ffff"),
	}
}

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	theme    Theme
	doc      lipgloss.Style
	title    lipgloss.Style
	label    lipgloss.Style
	text     lipgloss.Style
	help     lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	special  lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	focused  lipgloss.Style
	dialog   lipgloss.Style
	status   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		theme: t,
		doc:   lipgloss.NewStyle().Margin(1, 2),
		title: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			Padding(1, 2),
		label:    lipgloss.NewStyle().Foreground(t.Label),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		help:     lipgloss.NewStyle().Foreground(t.Subtle),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		success:  lipgloss.NewStyle().Foreground(t.Success),
		special:  lipgloss.NewStyle().Foreground(t.Warning),
		item:     lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		focused:  lipgloss.NewStyle().Foreground(t.Accent),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(t.Accent).
			Padding(1, 2).
			Width(60),
		status: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(t.Text),
	}
}

// strength returns the indicator style for a strength label.
func (s styles) strength(l passgen.Label) lipgloss.Style {
	c := s.theme.Weak
	switch l {
	case passgen.Fair:
		c = s.theme.Fair
	case passgen.Good:
		c = s.theme.Good
	case passgen.Strong:
		c = s.theme.Strong
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
