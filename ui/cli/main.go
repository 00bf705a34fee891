// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/phigen/phivault/buildvars"
	"github.com/phigen/phivault/internal/config"
	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/logging"
	"github.com/phigen/phivault/internal/state"
	"github.com/phigen/phivault/internal/vault"
	"github.com/spf13/cobra"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

const modulePath = "github.com/phigen/phivault"

// Environment variables read besides the PHIVAULT_* config keys.
const (
	envMasterPassword    = "PHIVAULT_MASTER_PASSWORD"
	envNewMasterPassword = "PHIVAULT_NEW_MASTER_PASSWORD"
)

// app carries the resolved configuration and flags for one command run.
type app struct {
	cfgFile       string
	vaultFlag     string
	passwordStdin bool
	verbose       bool
	showVersion   bool
	lang          string

	cfg       config.Config
	vaultPath string
	stdin     *bufio.Reader

	// vaultOpts is appended to every vault.Open; tests use it for a light KDF.
	vaultOpts []vault.Option
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	defer state.MasterPassword.Clear()
	return describeError(NewRootCmd().Execute())
}

// NewRootCmd creates and configures a new root cobra command. Every call
// returns an independent command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phivault",
		Short: "PhiVault is a local, encrypted password vault.",
		Long: `PhiVault keeps credentials (association, username, password) in a single
encrypted file guarded by a master password. Entries are sealed with
XChaCha20-Poly1305 under a key derived with Argon2id; the master password
itself is never stored.

Running without a subcommand will launch the interactive TUI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			return a.setupDefaultServices(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			state.MasterPassword.Clear()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
	cmd.Version = compositeVersion()

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: user config dir/phivault/phivault.yaml)")
	pf.StringVar(&a.vaultFlag, "vault", "", "vault file path (overrides vault.path)")
	pf.BoolVar(&a.passwordStdin, "password-stdin", false, "read the master password (and any further passwords) from stdin, one per line")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.showVersion, "version", "V", false, "print version and exit")
	pf.StringVar(&a.lang, "lang", "", `message language ("en", "de")`)

	cmd.AddCommand(
		newInitCmd(a),
		newStatusCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newCopyCmd(a),
		newGenerateCmd(a),
		newStrengthCmd(a),
		newPasswdCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setupDefaultServices loads configuration, then initializes logging, i18n
// and the environment master password.
func (a *app) setupDefaultServices(cmd *cobra.Command) error {
	var explicit *string
	if a.cfgFile != "" {
		explicit = &a.cfgFile
	}
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), explicit)
	if err != nil {
		if strings.Contains(err.Error(), "control characters are not allowed") {
			logging.Errorf("The config appears to be invalid: %v", err)
		}
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	logging.SetLevel(cfg.Log.Level)
	if a.verbose {
		logging.SetDebug(true)
	}
	i18n.Init(cfg.Language)

	a.vaultPath, err = cfg.VaultPath()
	if err != nil {
		return err
	}
	logging.Debugf("cli: vault path %s", a.vaultPath)

	a.stdin = bufio.NewReader(cmd.InOrStdin())
	if pw, ok := os.LookupEnv(envMasterPassword); ok && pw != "" {
		state.MasterPassword.Set([]byte(pw))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" && c != v {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		info, ok = debug.ReadBuildInfo()
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
