// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/phigen/phivault/internal/backup"
	"github.com/phigen/phivault/internal/config"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/state"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a vault and set its master password",
		Long: `Creates the vault file at the configured path and sets the master password.
The password is taken from PHIVAULT_MASTER_PASSWORD, from stdin with
--password-stdin, or prompted for twice on the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()
			if v.HasMasterPassword() {
				return errors.New(i18n.T("cli.err.already_initialized", a.vaultPath))
			}

			pw := state.MasterPassword.Get()
			if pw == nil {
				if pw, err = a.choosePassword(cmd, "", i18n.T("cli.prompt.new_master")); err != nil {
					return err
				}
			}
			defer pw.Zero()
			if err := a.checkMasterPolicy(pw); err != nil {
				return err
			}

			ok, err := v.SetMasterPassword(string(pw))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(i18n.T("cli.err.already_initialized", a.vaultPath))
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.init.success", a.vaultPath))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the vault exists and how many entries it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.status.path", a.vaultPath))
			fmt.Fprintln(out, i18n.T("cli.status.state", v.State().String()))
			if !v.HasMasterPassword() {
				fmt.Fprintln(out, i18n.T("cli.status.hint_init"))
				return nil
			}
			if id, ok := v.VaultID(); ok {
				fmt.Fprintln(out, i18n.T("cli.status.id", id.String()))
			}
			n, err := v.EntryCount()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, i18n.T("cli.status.entries", n))
			return nil
		},
	}
}

func newPasswdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password",
		Long: `Re-keys the vault: every entry is re-encrypted under a key derived from the
new master password, in a single transaction. The new password is read from
PHIVAULT_NEW_MASTER_PASSWORD, the next stdin line with --password-stdin, or
prompted for twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := a.masterPassword(cmd)
			if err != nil {
				return err
			}
			defer old.Zero()
			state.MasterPassword.Set(old)

			v, err := a.unlockedVault(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			next, err := a.choosePassword(cmd, envNewMasterPassword, i18n.T("cli.prompt.new_master"))
			if err != nil {
				return err
			}
			defer next.Zero()
			if err := a.checkMasterPolicy(next); err != nil {
				return err
			}

			ok, err := v.ChangeMasterPassword(string(old), string(next))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(i18n.T("cli.err.wrong_master"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.passwd.success"))
			return nil
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed (zstd) copy of the vault",
		Long: `Writes a consistent, Zstandard-compressed copy of the vault file. Entries stay
encrypted; the backup unlocks with the same master password.

If no output file is given, phivault-backup-YYYY-MM-DD.db.zst is used.
'.zst' is appended to names that lack it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := backup.DefaultName(time.Now())
			if len(args) == 1 {
				out = backup.NormalizeName(args[0])
			}
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()
			if !v.HasMasterPassword() {
				return errors.New(i18n.T("cli.err.not_initialized", a.vaultPath))
			}
			if err := backup.Export(v, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.backup.success", out))
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file> [dest]",
		Short: "Restore a vault from a backup",
		Long: `Decompresses a backup written by 'phivault backup' to dest (default: the
configured vault path). An existing file is never overwritten.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := a.vaultPath
			if len(args) == 2 {
				p, err := config.ExpandPath(args[1])
				if err != nil {
					return err
				}
				dest = p
			}
			if err := backup.Restore(args[0], dest); err != nil {
				if errors.Is(err, backup.ErrExists) {
					return errors.New(i18n.T("cli.err.restore_exists", dest))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.restore.success", dest))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	var system bool
	write := &cobra.Command{
		Use:   "write",
		Short: "Save the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			var err error
			if a.cfgFile != "" {
				path = a.cfgFile
				err = config.WriteConfigTo(&a.cfg, path)
			} else {
				path, err = config.WriteConfigFile(&a.cfg, system)
			}
			if err != nil {
				if errors.Is(err, os.ErrPermission) {
					return errors.New(i18n.T("cli.err.config_permission", path))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config.written", path))
			return nil
		},
	}
	write.Flags().BoolVar(&system, "system", false, "write the system-wide config instead of the user config")
	cmd.AddCommand(write)
	return cmd
}
