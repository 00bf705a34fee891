// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phigen/phivault/internal/i18n"
)

// Action is a user command. Keys map to actions through keyMap, actions map
// to behaviour through the handler table built in New.
type Action int

const (
	ActionGenerate Action = iota
	ActionSave
	ActionCopy
	ActionDelete
	ActionLock
	ActionUnlock
	ActionSwitchVault
	ActionQuit
	ActionAdd
	ActionEdit
	ActionBack
	ActionReveal
)

func (a Action) String() string {
	switch a {
	case ActionGenerate:
		return "generate"
	case ActionSave:
		return "save"
	case ActionCopy:
		return "copy"
	case ActionDelete:
		return "delete"
	case ActionLock:
		return "lock"
	case ActionUnlock:
		return "unlock"
	case ActionSwitchVault:
		return "switch-vault"
	case ActionQuit:
		return "quit"
	case ActionAdd:
		return "add"
	case ActionEdit:
		return "edit"
	case ActionBack:
		return "back"
	case ActionReveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// handler performs one action against the model.
type handler func(m *Model) tea.Cmd

// keyMap binds keys to actions. List-view bindings may use plain letters;
// views with text inputs only get control keys, enter and esc.
type keyMap map[Action]key.Binding

func defaultKeyMap() keyMap {
	return keyMap{
		ActionGenerate:    key.NewBinding(key.WithKeys("ctrl+g", "g"), key.WithHelp("ctrl+g", "generate")),
		ActionSave:        key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "save")),
		ActionCopy:        key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy")),
		ActionDelete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		ActionLock:        key.NewBinding(key.WithKeys("ctrl+l", "L"), key.WithHelp("L", "lock")),
		ActionUnlock:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "unlock")),
		ActionSwitchVault: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "switch vault")),
		ActionQuit:        key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		ActionAdd:         key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		ActionEdit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		ActionBack:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ActionReveal:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reveal")),
	}
}

// viewActions lists, per view and in priority order, the actions whose keys
// are live. Letter bindings are filtered out of text-entry views.
var viewActions = map[viewState][]Action{
	unlockView: {ActionUnlock, ActionSwitchVault, ActionQuit},
	listView:   {ActionAdd, ActionEdit, ActionGenerate, ActionCopy, ActionDelete, ActionLock, ActionSwitchVault, ActionQuit},
	formView:   {ActionSave, ActionGenerate, ActionReveal, ActionBack, ActionQuit},
	switchView: {ActionSave, ActionBack, ActionQuit},
}

// textViews hold a focused text input, so printable keys are typed, not
// dispatched.
var textViews = map[viewState]bool{unlockView: true, formView: true, switchView: true}

// actionFor resolves a key press in the current view.
func (m *Model) actionFor(msg tea.KeyMsg) (Action, bool) {
	for _, a := range viewActions[m.state] {
		b, ok := m.keys[a]
		if !ok || !b.Enabled() {
			continue
		}
		if textViews[m.state] && msg.Type == tea.KeyRunes {
			continue
		}
		if key.Matches(msg, b) {
			return a, true
		}
	}
	return 0, false
}

// helpLine renders the bindings available in the current view.
func (m *Model) helpLine() string {
	var out string
	for _, a := range viewActions[m.state] {
		h := m.keys[a].Help()
		if h.Key == "" {
			continue
		}
		if textViews[m.state] && len(h.Key) == 1 {
			continue
		}
		if out != "" {
			out += " • "
		}
		out += h.Key + " " + i18n.T("tui.action."+a.String())
	}
	return out
}

func disabled(b key.Binding) key.Binding {
	b.SetEnabled(false)
	return b
}
