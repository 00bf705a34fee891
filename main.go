// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for PhiVault.
//
// Usage:
//
//	go run . [flags]
//	./phivault [flags]
//
// Without a subcommand this launches the vault TUI. See --help for options.
package main

import (
	"fmt"
	"os"

	"github.com/phigen/phivault/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "phivault: %v\n", err)
		os.Exit(1)
	}
}
