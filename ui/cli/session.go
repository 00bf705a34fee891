// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/security"
	"github.com/phigen/phivault/internal/state"
	"github.com/phigen/phivault/internal/vault"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// openVault binds the configured vault path without unlocking it.
func (a *app) openVault() (*vault.Vault, error) {
	return vault.Open(a.vaultPath, a.vaultOpts...)
}

// unlockedVault opens the vault and unlocks it with the master password.
// The caller must Close it.
func (a *app) unlockedVault(cmd *cobra.Command) (*vault.Vault, error) {
	v, err := a.openVault()
	if err != nil {
		return nil, err
	}
	if !v.HasMasterPassword() {
		_ = v.Close()
		return nil, errors.New(i18n.T("cli.err.not_initialized", a.vaultPath))
	}
	pw, err := a.masterPassword(cmd)
	if err != nil {
		_ = v.Close()
		return nil, err
	}
	defer pw.Zero()

	ok, err := v.Unlock(string(pw))
	if err != nil {
		_ = v.Close()
		return nil, err
	}
	if !ok {
		_ = v.Close()
		return nil, errors.New(i18n.T("cli.err.wrong_master"))
	}
	return v, nil
}

// masterPassword returns the master password from the environment/stdin
// mailbox or asks for it on the terminal.
func (a *app) masterPassword(cmd *cobra.Command) (security.Secret, error) {
	if state.MasterPassword.Has() {
		return state.MasterPassword.Get(), nil
	}
	return a.promptSecret(cmd, i18n.T("cli.prompt.master"))
}

// choosePassword obtains a new password: from env (if named and set), the
// next stdin line with --password-stdin, or a terminal prompt with
// confirmation.
func (a *app) choosePassword(cmd *cobra.Command, env, prompt string) (security.Secret, error) {
	if env != "" {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			return security.FromString(v), nil
		}
	}
	if a.passwordStdin {
		return a.promptSecret(cmd, prompt)
	}
	first, err := a.promptSecret(cmd, prompt)
	if err != nil {
		return nil, err
	}
	second, err := a.promptSecret(cmd, i18n.T("cli.prompt.confirm"))
	if err != nil {
		first.Zero()
		return nil, err
	}
	defer second.Zero()
	if !bytes.Equal(first, second) {
		first.Zero()
		return nil, errors.New(i18n.T("cli.err.mismatch"))
	}
	return first, nil
}

// promptSecret reads one secret: the next stdin line with --password-stdin,
// otherwise a no-echo terminal prompt on stderr.
func (a *app) promptSecret(cmd *cobra.Command, prompt string) (security.Secret, error) {
	if a.passwordStdin {
		line, err := a.readStdinLine()
		if err != nil {
			return nil, errors.New(i18n.T("cli.err.stdin_password", err))
		}
		defer wipe(line)
		return security.FromBytes(line), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New(i18n.T("cli.err.no_terminal"))
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer wipe(b)
	return security.FromBytes(b), nil
}

// readStdinLine returns the next line of stdin without its line ending.
func (a *app) readStdinLine() ([]byte, error) {
	if a.stdin == nil {
		return nil, io.ErrUnexpectedEOF
	}
	line, err := a.stdin.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		wipe(line)
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	out := bytes.TrimRight(line, "\r\n")
	return out, nil
}

// checkMasterPolicy enforces policy.min_master_length.
func (a *app) checkMasterPolicy(pw security.Secret) error {
	minLen := a.cfg.Policy.MinMasterLength
	if n := len([]rune(string(pw))); n < minLen {
		return errors.New(i18n.T("cli.err.master_too_short", minLen))
	}
	return nil
}

func wipe(b []byte) { security.Wipe(b) }

// userError is a localized message that still unwraps to the cause.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// describeError maps vault errors to localized messages.
func describeError(err error) error {
	if err == nil {
		return nil
	}
	var ue *userError
	var ve *vault.ValidationError
	var se *vault.StorageError
	switch {
	case errors.As(err, &ue):
		return err
	case errors.As(err, &ve):
		return &userError{msg: i18n.T("cli.err.validation", ve.Field, ve.Reason), err: err}
	case errors.Is(err, vault.ErrVaultLocked):
		return &userError{msg: i18n.T("cli.err.locked"), err: err}
	case errors.Is(err, vault.ErrNotFound):
		return &userError{msg: i18n.T("cli.err.not_found"), err: err}
	case errors.Is(err, vault.ErrCorrupted):
		return &userError{msg: i18n.T("cli.err.corrupted", err.Error()), err: err}
	case errors.As(err, &se):
		return &userError{msg: i18n.T("cli.err.storage", se.Op, se.Path, se.Err), err: err}
	}
	return err
}
