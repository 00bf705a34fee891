// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/phigen/phivault/internal/clipboard"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/phigen/phivault/internal/vault"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(i18n.T("cli.err.invalid_id", s))
	}
	return id, nil
}

// entryPassword resolves the password for add/update from --password,
// --generate or a prompt. ok is false when none was requested and prompt
// is false.
func (a *app) entryPassword(cmd *cobra.Command, flagPw string, genLen int, prompt bool) (pw string, generated bool, ok bool, err error) {
	switch {
	case cmd.Flags().Changed("password") && cmd.Flags().Changed("generate"):
		return "", false, false, errors.New(i18n.T("cli.err.password_and_generate"))
	case cmd.Flags().Changed("password"):
		return flagPw, false, true, nil
	case cmd.Flags().Changed("generate"):
		cs := passgen.DefaultCharset
		cs.Symbols = a.cfg.Generator.Symbols
		p, err := generatePassword(genLen, cs)
		if err != nil {
			return "", false, false, err
		}
		return p, true, true, nil
	case prompt:
		s, err := a.promptSecret(cmd, i18n.T("cli.prompt.entry_password"))
		if err != nil {
			return "", false, false, err
		}
		defer s.Zero()
		return string(s), false, true, nil
	}
	return "", false, false, nil
}

func newAddCmd(a *app) *cobra.Command {
	var password string
	var genLen int
	var show bool
	cmd := &cobra.Command{
		Use:   "add <association> <username>",
		Short: "Store a new credential",
		Long: `Stores a credential under an association (site or service name). The
password comes from --password, is generated with --generate N, or is
prompted for.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			pw, generated, _, err := a.entryPassword(cmd, password, genLen, true)
			if err != nil {
				return err
			}
			id, err := v.Add(args[0], args[1], pw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.add.success", id))
			if generated {
				st := passgen.CalculateStrength(pw)
				fmt.Fprintln(out, i18n.T("cli.strength.line", i18n.T("strength."+string(st.Label)), st.Score))
				if show {
					fmt.Fprintln(out, pw)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "entry password (visible in shell history; prefer the prompt)")
	cmd.Flags().IntVarP(&genLen, "generate", "g", passgen.DefaultLength, "generate a password of this length")
	cmd.Flags().Lookup("generate").NoOptDefVal = strconv.Itoa(passgen.DefaultLength)
	cmd.Flags().BoolVar(&show, "show", false, "print the generated password")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored credentials with masked passwords",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			entries, err := v.GetAll()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, i18n.T("cli.list.empty"))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Association, e.Username, e.MaskedPassword()})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers(i18n.T("tui.list.col_id"), i18n.T("tui.list.col_association"),
					i18n.T("tui.list.col_username"), i18n.T("tui.list.col_password")).
				Rows(rows...)
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			e, err := v.GetByID(id)
			if err != nil {
				return err
			}
			if e == nil {
				return &userError{msg: i18n.T("cli.err.no_entry", id), err: vault.ErrNotFound}
			}
			pw := e.MaskedPassword()
			if show {
				pw = e.Password
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.get.id", e.ID))
			fmt.Fprintln(out, i18n.T("cli.get.association", e.Association))
			fmt.Fprintln(out, i18n.T("cli.get.username", e.Username))
			fmt.Fprintln(out, i18n.T("cli.get.password", pw))
			fmt.Fprintln(out, i18n.T("cli.get.updated", e.UpdatedAt.Local().Format("2006-01-02 15:04")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print the password in clear text")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var association, username, password string
	var genLen int
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a stored credential",
		Long: `Changes the given fields of an entry; fields without a flag are kept.
Updating an id that does not exist is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd vault.EntryUpdate
			if cmd.Flags().Changed("association") {
				upd.Association = &association
			}
			if cmd.Flags().Changed("username") {
				upd.Username = &username
			}
			pw, generated, ok, err := a.entryPassword(cmd, password, genLen, false)
			if err != nil {
				return err
			}
			if ok {
				upd.Password = &pw
			}
			if upd.Association == nil && upd.Username == nil && upd.Password == nil {
				return errors.New(i18n.T("cli.err.nothing_to_update"))
			}

			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()
			if err := v.Update(id, upd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.update.success", id))
			if generated {
				st := passgen.CalculateStrength(pw)
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.strength.line", i18n.T("strength."+string(st.Label)), st.Score))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&association, "association", "", "new association")
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")
	cmd.Flags().IntVarP(&genLen, "generate", "g", passgen.DefaultLength, "generate a new password of this length")
	cmd.Flags().Lookup("generate").NoOptDefVal = strconv.Itoa(passgen.DefaultLength)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored credential",
		Long:    `Deletes an entry. Deleting an id that does not exist succeeds silently.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()
			if err := v.Delete(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.delete.success", id))
			return nil
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	var noWait bool
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a password to the clipboard and clear it again",
		Long: `Copies the entry's password to the system clipboard, then waits
vault.clipboard_clear (default 30s) and clears it if it still holds the
password. Interrupting the wait clears it immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			e, err := v.GetByID(id)
			_ = v.Close()
			if err != nil {
				return err
			}
			if e == nil {
				return &userError{msg: i18n.T("cli.err.no_entry", id), err: vault.ErrNotFound}
			}

			clearAfter := a.cfg.Vault.ClipboardClear
			if noWait {
				clearAfter = 0
			}
			cb := clipboard.New(clearAfter)
			done, err := cb.Copy(e.Password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if done == nil {
				fmt.Fprintln(out, i18n.T("tui.status.copied", e.Association))
				return nil
			}
			fmt.Fprintln(out, i18n.T("tui.status.copied_clear", e.Association, clearAfter.String()))

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)
			select {
			case <-done:
			case <-sig:
				cb.ClearNow()
			case <-cmd.Context().Done():
				cb.ClearNow()
			}
			fmt.Fprintln(out, i18n.T("tui.status.clipboard_cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "copy and exit without clearing the clipboard")
	return cmd
}
