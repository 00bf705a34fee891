// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phigen/phivault/internal/i18n"
	"github.com/phigen/phivault/internal/passgen"
	"github.com/phigen/phivault/internal/state"
	"github.com/phigen/phivault/internal/testutil"
	"github.com/phigen/phivault/internal/vault"
)

const testMaster = "correct horse"

// setupTestVault isolates config lookup and returns a vault path in a fresh
// temp dir. Nothing is created on disk.
func setupTestVault(t *testing.T) string {
	t.Helper()
	tmp := testutil.Isolate(t)
	t.Setenv(envMasterPassword, "")
	t.Setenv(envNewMasterPassword, "")
	i18n.Init("en")
	t.Cleanup(state.MasterPassword.Clear)
	return filepath.Join(tmp, "vault.db")
}

// executeCommand runs a fresh command tree with stdin and returns stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&app{vaultOpts: []vault.Option{vault.WithKDFParams(testutil.FastKDF)}})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	state.MasterPassword.Clear()
	return out.String(), describeError(err)
}

// mustRun is executeCommand that fails the test on error.
func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func initVault(t *testing.T, path string) {
	t.Helper()
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "init")
}

func TestInitAndStatus(t *testing.T) {
	path := setupTestVault(t)

	out := mustRun(t, "", "--vault", path, "status")
	if !strings.Contains(out, "uninitialized") {
		t.Fatalf("expected uninitialized status, got: %s", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("status must not create the vault file, stat err=%v", err)
	}

	initVault(t, path)
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("vault file missing after init: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("vault mode = %v, want 0600", fi.Mode().Perm())
	}

	out = mustRun(t, "", "--vault", path, "status")
	if !strings.Contains(out, "locked") || !strings.Contains(out, "0") {
		t.Fatalf("expected locked status with 0 entries, got: %s", out)
	}

	_, err = executeCommand(t, "another one\n", "--vault", path, "--password-stdin", "init")
	if err == nil || err.Error() != i18n.T("cli.err.already_initialized", path) {
		t.Fatalf("expected already initialized error, got %v", err)
	}
}

func TestInit_ShortMasterPassword(t *testing.T) {
	path := setupTestVault(t)
	_, err := executeCommand(t, "short\n", "--vault", path, "--password-stdin", "init")
	if err == nil || err.Error() != i18n.T("cli.err.master_too_short", 8) {
		t.Fatalf("expected policy error, got %v", err)
	}
}

func TestAddListGet_BasicFlow(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)

	out := mustRun(t, testMaster+"\nhunter22\n", "--vault", path, "--password-stdin", "add", "github", "alice")
	if !strings.Contains(out, "1") {
		t.Fatalf("expected entry id in add output, got: %s", out)
	}
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "mail", "bob", "--password", "s3cretpw")

	out = mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "list")
	for _, want := range []string{"github", "alice", "mail", "bob", "********"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in list output, got: %s", want, out)
		}
	}
	if strings.Contains(out, "hunter22") || strings.Contains(out, "s3cretpw") {
		t.Fatalf("list must mask passwords, got: %s", out)
	}
	if strings.Index(out, "github") > strings.Index(out, "mail") {
		t.Fatalf("expected insertion order, got: %s", out)
	}

	out = mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "get", "1")
	if strings.Contains(out, "hunter22") {
		t.Fatalf("get without --show must mask, got: %s", out)
	}
	out = mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "get", "1", "--show")
	if !strings.Contains(out, "hunter22") {
		t.Fatalf("get --show should print the password, got: %s", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read vault: %v", err)
	}
	if bytes.Contains(raw, []byte("hunter22")) || bytes.Contains(raw, []byte("alice")) {
		t.Fatalf("vault file contains plaintext")
	}
}

func TestAdd_GeneratedPassword(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)

	out := mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "site", "carol", "--generate=24", "--show")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	pw := lines[len(lines)-1]
	if len(pw) != 24 {
		t.Fatalf("expected 24 character generated password, got %q", pw)
	}
	out = mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "get", "1", "--show")
	if !strings.Contains(out, pw) {
		t.Fatalf("stored password differs from printed one: %s", out)
	}

	_, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "x", "y", "--password", "p", "--generate=16")
	if err == nil {
		t.Fatalf("expected error for --password together with --generate")
	}
}

func TestAdd_GenerateLengthOutOfRange(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)

	for _, n := range []int{4, 200} {
		_, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "x", "y", fmt.Sprintf("--generate=%d", n))
		if err == nil {
			t.Fatalf("expected error for --generate=%d", n)
		}
		want := i18n.T("cli.err.length", n, passgen.MinLength, passgen.MaxLength)
		if err.Error() != want {
			t.Fatalf("--generate=%d: got %q, want %q", n, err.Error(), want)
		}
	}
}

func TestAdd_EmptyFieldIsValidationError(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)

	_, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "  ", "alice", "--password", "pw")
	if !errors.Is(err, vault.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWrongMasterPassword(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)

	_, err := executeCommand(t, "not the password\n", "--vault", path, "--password-stdin", "list")
	if err == nil || err.Error() != i18n.T("cli.err.wrong_master") {
		t.Fatalf("expected wrong master error, got %v", err)
	}
}

func TestCommandsNeedInitializedVault(t *testing.T) {
	path := setupTestVault(t)
	_, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "list")
	if err == nil || err.Error() != i18n.T("cli.err.not_initialized", path) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestMasterPasswordFromEnv(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)
	t.Setenv(envMasterPassword, testMaster)

	mustRun(t, "", "--vault", path, "add", "env", "dave", "--password", "pw12345")
	out := mustRun(t, "", "--vault", path, "list")
	if !strings.Contains(out, "dave") {
		t.Fatalf("expected entry in list, got: %s", out)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "github", "alice", "--password", "old-pass")

	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "update", "1", "--username", "alice2")
	out := mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "get", "1", "--show")
	if !strings.Contains(out, "alice2") || !strings.Contains(out, "old-pass") || !strings.Contains(out, "github") {
		t.Fatalf("update should change only the username, got: %s", out)
	}

	_, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "update", "99", "--username", "x")
	if !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("expected not found for missing id, got %v", err)
	}
	_, err = executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "update", "1")
	if err == nil {
		t.Fatalf("expected error when no field is given")
	}
	_, err = executeCommand(t, "", "--vault", path, "get", "abc")
	if err == nil || err.Error() != i18n.T("cli.err.invalid_id", "abc") {
		t.Fatalf("expected invalid id error, got %v", err)
	}

	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "delete", "1")
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "delete", "1")
	_, err = executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "get", "1")
	if !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("expected deleted entry to be gone, got %v", err)
	}
}

func TestPasswd_ReKeysVault(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "github", "alice", "--password", "keep-me")

	mustRun(t, testMaster+"\nbrand new master\n", "--vault", path, "--password-stdin", "passwd")

	if _, err := executeCommand(t, testMaster+"\n", "--vault", path, "--password-stdin", "list"); err == nil {
		t.Fatalf("old master password should be rejected after passwd")
	}
	out := mustRun(t, "brand new master\n", "--vault", path, "--password-stdin", "get", "1", "--show")
	if !strings.Contains(out, "keep-me") {
		t.Fatalf("entry unreadable after passwd: %s", out)
	}

	_, err := executeCommand(t, "brand new master\nshort\n", "--vault", path, "--password-stdin", "passwd")
	if err == nil || err.Error() != i18n.T("cli.err.master_too_short", 8) {
		t.Fatalf("expected policy error for short new password, got %v", err)
	}
}

func TestBackupRestore(t *testing.T) {
	path := setupTestVault(t)
	initVault(t, path)
	mustRun(t, testMaster+"\n", "--vault", path, "--password-stdin", "add", "github", "alice", "--password", "backed-up")

	archive := filepath.Join(filepath.Dir(path), "snap")
	out := mustRun(t, "", "--vault", path, "backup", archive)
	if !strings.Contains(out, archive+".zst") {
		t.Fatalf("expected normalized archive name in output, got: %s", out)
	}

	dest := filepath.Join(filepath.Dir(path), "restored.db")
	mustRun(t, "", "--vault", path, "restore", archive+".zst", dest)
	out = mustRun(t, testMaster+"\n", "--vault", dest, "--password-stdin", "get", "1", "--show")
	if !strings.Contains(out, "backed-up") {
		t.Fatalf("restored vault lost the entry: %s", out)
	}

	_, err := executeCommand(t, "", "--vault", path, "restore", archive+".zst", dest)
	if err == nil || err.Error() != i18n.T("cli.err.restore_exists", dest) {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	setupTestVault(t)

	out := mustRun(t, "", "generate", "--length", "20", "-q")
	if pw := strings.TrimSpace(out); len(pw) != 20 {
		t.Fatalf("expected 20 characters, got %q", pw)
	}

	out = mustRun(t, "", "generate", "--no-upper", "--no-lower", "--no-symbols", "-q")
	for _, r := range strings.TrimSpace(out) {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits only, got %q", out)
		}
	}

	_, err := executeCommand(t, "", "generate", "--length", "4")
	if err == nil {
		t.Fatalf("expected error for length 4")
	}
	_, err = executeCommand(t, "", "generate", "--no-upper", "--no-lower", "--no-digits", "--no-symbols")
	if err == nil || err.Error() != i18n.T("cli.err.empty_charset") {
		t.Fatalf("expected empty charset error, got %v", err)
	}
}

func TestStrength(t *testing.T) {
	setupTestVault(t)

	out := mustRun(t, "", "strength", "password")
	if !strings.Contains(out, i18n.T("strength.weak")) {
		t.Fatalf("expected weak label, got: %s", out)
	}
	out = mustRun(t, "Xy9!zz12\n", "--password-stdin", "strength")
	if !strings.Contains(out, i18n.T("strength.strong")) || !strings.Contains(out, "99") {
		t.Fatalf("expected strong label with score 99, got: %s", out)
	}
}

func TestConfigShowAndWrite(t *testing.T) {
	path := setupTestVault(t)

	out := mustRun(t, "", "--vault", path, "config", "show")
	if !strings.Contains(out, path) || !strings.Contains(out, "min_master_length") {
		t.Fatalf("expected effective config, got: %s", out)
	}

	cfgFile := filepath.Join(filepath.Dir(path), "custom.yaml")
	if err := os.WriteFile(cfgFile, []byte("language: de\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "", "--config", cfgFile, "--vault", path, "config", "write")
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), path) || !strings.Contains(string(data), "language: de") {
		t.Fatalf("config write lost values: %s", data)
	}
	i18n.Init("en")
}
