// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/phigen/phivault/internal/clipboard"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/phigen/phivault/internal/tui"
	"github.com/phigen/phivault/internal/vault"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive vault window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

// runTUI opens the configured vault locked and hands it to the TUI, which
// owns it until exit.
func (a *app) runTUI(cmd *cobra.Command) error {
	v, err := a.openVault()
	if err != nil {
		return err
	}
	cs := passgen.DefaultCharset
	cs.Symbols = a.cfg.Generator.Symbols
	return tui.Run(tui.Options{
		Vault: v,
		Open: func(path string) (*vault.Vault, error) {
			return vault.Open(path, a.vaultOpts...)
		},
		Theme:           tui.DefaultTheme(),
		AutoLock:        a.cfg.Vault.AutoLock,
		Clipboard:       clipboard.New(a.cfg.Vault.ClipboardClear),
		GenLength:       a.cfg.Generator.Length,
		Charset:         cs,
		MinMasterLength: a.cfg.Policy.MinMasterLength,
	})
}
