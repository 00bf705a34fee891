// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui is the interactive terminal front-end of PhiVault. The top-level
// Model routes between the unlock prompt, the entry list, the entry form and
// the vault switcher, and dispatches key presses through an Action table.
package tui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phigen/phivault/internal/autolock"
	"github.com/phigen/phivault/internal/clipboard"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/phigen/phivault/internal/vault"
)

// viewState is the active screen.
type viewState int

const (
	unlockView viewState = iota
	listView
	formView
	switchView
)

// Options configures New. Vault is required; everything else has a default.
type Options struct {
	Vault *vault.Vault
	// Open binds a vault at another path for the switch view. Nil disables
	// switching.
	Open func(path string) (*vault.Vault, error)
	// Theme defaults to DefaultTheme when its Text colour is unset.
	Theme Theme
	// AutoLock is the inactivity timeout; zero disables it.
	AutoLock time.Duration
	// Clipboard handles copy; nil disables the copy action.
	Clipboard       *clipboard.Manager
	GenLength       int
	Charset         passgen.Charset
	MinMasterLength int
}

// Messages produced by commands.
type (
	unlockResultMsg struct {
		ok    bool
		setup bool
		err   error
	}
	autoLockedMsg       struct{}
	clipboardClearedMsg struct{}
)

// vaultRef is the current vault, shared with the auto-lock timer so a vault
// switch retargets it.
type vaultRef struct {
	mu sync.Mutex
	v  *vault.Vault
}

func (r *vaultRef) get() *vault.Vault {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v
}

func (r *vaultRef) set(v *vault.Vault) {
	r.mu.Lock()
	r.v = v
	r.mu.Unlock()
}

// Lock satisfies autolock.Locker.
func (r *vaultRef) Lock() {
	if v := r.get(); v != nil {
		v.Lock()
	}
}

// Model is the top-level bubbletea model.
type Model struct {
	opts     Options
	ref      *vaultRef
	styles   styles
	keys     keyMap
	handlers map[Action]handler
	timer    *autolock.Timer

	state  viewState
	unlock unlockModel
	list   listModel
	form   formModel
	sw     switchModel

	busy   bool
	status string
	err    error
	width  int
	height int
}

// New builds the model for opts.Vault, starting at the unlock (or setup)
// prompt.
func New(opts Options) Model {
	if opts.Theme.Text == "" {
		opts.Theme = DefaultTheme()
	}
	if opts.GenLength == 0 {
		opts.GenLength = passgen.DefaultLength
	}
	if opts.Charset.Empty() {
		opts.Charset = passgen.DefaultCharset
	}
	if opts.MinMasterLength <= 0 {
		opts.MinMasterLength = 8
	}

	ref := &vaultRef{v: opts.Vault}
	m := Model{
		opts:   opts,
		ref:    ref,
		styles: newStyles(opts.Theme),
		keys:   defaultKeyMap(),
		timer:  autolock.New(opts.AutoLock, ref),
	}
	m.handlers = map[Action]handler{
		ActionGenerate:    (*Model).onGenerate,
		ActionSave:        (*Model).onSave,
		ActionCopy:        (*Model).onCopy,
		ActionDelete:      (*Model).onDelete,
		ActionLock:        (*Model).onLock,
		ActionUnlock:      (*Model).onUnlock,
		ActionSwitchVault: (*Model).onSwitchVault,
		ActionQuit:        (*Model).onQuit,
		ActionAdd:         (*Model).onAdd,
		ActionEdit:        (*Model).onEdit,
		ActionBack:        (*Model).onBack,
		ActionReveal:      (*Model).onReveal,
	}
	if opts.Clipboard == nil {
		m.keys[ActionCopy] = disabled(m.keys[ActionCopy])
	}
	if opts.Open == nil {
		m.keys[ActionSwitchVault] = disabled(m.keys[ActionSwitchVault])
	}
	m.enterVaultState()
	return m
}

// Init starts the cursor blink and the auto-lock watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitAutoLock())
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case autoLockedMsg:
		m.toLocked(i18n.T("tui.status.autolocked"))
		return m, m.waitAutoLock()

	case unlockResultMsg:
		m.onUnlockResult(msg)
		return m, nil

	case clipboardClearedMsg:
		m.status = i18n.T("tui.status.clipboard_cleared")
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.onQuit()
		}
		if m.busy {
			return m, nil
		}
		if m.state != unlockView {
			m.timer.Touch()
		}
		if m.state == listView && m.list.confirmID != 0 {
			return m, m.confirmDelete(msg)
		}
		if a, ok := m.actionFor(msg); ok {
			m.err = nil
			return m, m.handlers[a](&m)
		}
	}

	return m, m.updateActive(msg)
}

// updateActive forwards msg to the inputs of the current view.
func (m *Model) updateActive(msg tea.Msg) tea.Cmd {
	switch m.state {
	case unlockView:
		return m.unlock.update(msg)
	case listView:
		m.list.update(msg)
		return nil
	case formView:
		return m.form.update(msg)
	case switchView:
		return m.sw.update(msg)
	}
	return nil
}

// View renders the current screen.
func (m Model) View() string {
	var body string
	switch m.state {
	case unlockView:
		body = m.unlock.view(m.styles, m.vault().Path())
	case listView:
		body = m.list.view(m.styles, m.vault().Path())
	case formView:
		body = m.form.view(m.styles)
	case switchView:
		body = m.sw.view(m.styles)
	}

	var status string
	switch {
	case m.err != nil:
		status = m.styles.err.Render(m.err.Error())
	case m.busy:
		status = m.styles.special.Render(i18n.T("tui.status.working"))
	case m.status != "":
		status = m.styles.status.Render(m.status)
	}
	width := m.width - 4
	if width < 40 {
		width = 60
	}
	help := m.styles.help.Width(width).Render(m.helpLine())
	return m.styles.doc.Render(lipgloss.JoinVertical(lipgloss.Left, body, "", status, help))
}

func (m *Model) vault() *vault.Vault { return m.ref.get() }

// enterVaultState shows the prompt matching the vault's lifecycle state.
func (m *Model) enterVaultState() {
	switch m.vault().State() {
	case vault.StateUnlocked:
		m.toList()
	case vault.StateUninitialized:
		m.state = unlockView
		m.unlock = newUnlockModel(true)
	default:
		m.state = unlockView
		m.unlock = newUnlockModel(false)
	}
}

// toList reloads entries and shows the list.
func (m *Model) toList() {
	entries, err := m.vault().GetAll()
	if err != nil {
		if errors.Is(err, vault.ErrVaultLocked) {
			m.toLocked("")
			return
		}
		m.err = err
	}
	m.list.setEntries(entries)
	m.state = listView
}

// toLocked wipes everything decrypted from the model and shows the unlock
// prompt.
func (m *Model) toLocked(status string) {
	m.timer.Stop()
	m.list = listModel{}
	m.form = formModel{}
	m.state = unlockView
	m.unlock = newUnlockModel(!m.vault().HasMasterPassword())
	m.status = status
}

func (m Model) waitAutoLock() tea.Cmd {
	if m.timer.Timeout() <= 0 {
		return nil
	}
	fired := m.timer.Fired()
	return func() tea.Msg {
		<-fired
		return autoLockedMsg{}
	}
}

// Run starts the TUI full-screen and returns when the user quits. The vault
// current at exit is closed and a pending clipboard clear runs immediately.
func Run(opts Options) error {
	final, err := tea.NewProgram(New(opts), tea.WithAltScreen()).Run()
	if m, ok := final.(Model); ok {
		m.timer.Stop()
		if m.opts.Clipboard != nil {
			m.opts.Clipboard.ClearNow()
		}
		if cerr := m.vault().Close(); cerr != nil {
			logging.Warnf("tui: close vault: %v", cerr)
		}
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
