// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var length int
	var noLower, noUpper, noDigits, noSymbols, quiet bool
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a random password",
		Long: `Generates a password from crypto/rand containing every selected
character class. Length defaults to generator.length (16) and must be
between 8 and 128.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("length") {
				length = a.cfg.Generator.Length
			}
			cs := passgen.Charset{
				Lower:   !noLower,
				Upper:   !noUpper,
				Digits:  !noDigits,
				Symbols: a.cfg.Generator.Symbols && !noSymbols,
			}
			pw, err := generatePassword(length, cs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, pw)
			if !quiet {
				st := passgen.CalculateStrength(pw)
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.strength.line", i18n.T("strength."+string(st.Label)), st.Score))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", passgen.DefaultLength, "password length (8-128)")
	cmd.Flags().BoolVar(&noLower, "no-lower", false, "exclude lowercase letters")
	cmd.Flags().BoolVar(&noUpper, "no-upper", false, "exclude uppercase letters")
	cmd.Flags().BoolVar(&noDigits, "no-digits", false, "exclude digits")
	cmd.Flags().BoolVar(&noSymbols, "no-symbols", false, "exclude symbols")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the password")
	return cmd
}

func newStrengthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strength [password]",
		Short: "Score a password",
		Long: `Prints the 0-100 strength score and label of a password together with a
guess-based entropy and crack time estimate. Without an argument the
password is read from the prompt (or stdin with --password-stdin).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				s, err := a.promptSecret(cmd, i18n.T("cli.prompt.password"))
				if err != nil {
					return err
				}
				defer s.Zero()
				pw = string(s)
			}
			st := passgen.CalculateStrength(pw)
			est := passgen.EstimateCrack(pw)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.strength.line", i18n.T("strength."+string(st.Label)), st.Score))
			fmt.Fprintln(out, i18n.T("cli.strength.estimate", est.EntropyBits, est.CrackTime))
			return nil
		},
	}
}

// generatePassword wraps passgen.Generate with localized messages for the
// errors a user can cause from flags.
func generatePassword(length int, cs passgen.Charset) (string, error) {
	pw, err := passgen.Generate(length, cs)
	switch {
	case errors.Is(err, passgen.ErrInvalidLength):
		return "", errors.New(i18n.T("cli.err.length", length, passgen.MinLength, passgen.MaxLength))
	case errors.Is(err, passgen.ErrEmptyCharset):
		return "", errors.New(i18n.T("cli.err.empty_charset"))
	}
	return pw, err
}
