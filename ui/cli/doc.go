// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for PhiVault using Cobra.
// It loads configuration, resolves the vault path and master password
// sources, and provides commands that delegate to the vault, passgen and
// backup packages. Running without a subcommand starts the TUI.
package cli
