// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every message id passed to i18n.T exists in the
// primary locale, that no locale lacks an id the primary one has, and lists
// ids nothing uses. Ids built by concatenation ("strength."+label) count as
// prefixes: every locale id under the prefix is treated as used.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var (
	exactRe  = regexp.MustCompile(`i18n\.T\("([^"]+)"\s*[,)]`)
	prefixRe = regexp.MustCompile(`i18n\.T\("([^"]+\.)"\s*\+`)
)

// usage is the set of ids referenced from Go source.
type usage struct {
	exact    map[string][]string // id -> "file:line"
	prefixes map[string]struct{}
}

func (u usage) uses(id string) bool {
	if _, ok := u.exact[id]; ok {
		return true
	}
	for p := range u.prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// report is the outcome of one lint run.
type report struct {
	undefined map[string][]string // used in code, absent from the primary locale
	missing   map[string][]string // locale file -> ids it lacks
	orphaned  []string
}

func (r report) failed() bool { return len(r.undefined) > 0 || len(r.missing) > 0 }

func main() {
	r, err := lint(projectRoot, localesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	r.print(os.Stdout)
	if r.failed() {
		os.Exit(1)
	}
}

func lint(root, locales string) (report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return report{}, fmt.Errorf("scan sources: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return report{}, fmt.Errorf("load %s: %w", primaryLocale, err)
	}

	r := report{undefined: map[string][]string{}, missing: map[string][]string{}}
	for id, locs := range used.exact {
		if _, ok := primary[id]; !ok {
			r.undefined[id] = locs
		}
	}
	for id := range primary {
		if !used.uses(id) {
			r.orphaned = append(r.orphaned, id)
		}
	}
	sort.Strings(r.orphaned)

	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return report{}, err
	}
	for _, f := range files {
		if filepath.Base(f) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return report{}, fmt.Errorf("load %s: %w", f, err)
		}
		var lacks []string
		for id := range primary {
			if _, ok := keys[id]; !ok {
				lacks = append(lacks, id)
			}
		}
		if len(lacks) > 0 {
			sort.Strings(lacks)
			r.missing[filepath.Base(f)] = lacks
		}
	}
	return r, nil
}

func (r report) print(w io.Writer) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  none")
		}
		for _, it := range items {
			fmt.Fprintf(w, "  %s\n", it)
		}
	}

	var undefined []string
	for id, locs := range r.undefined {
		undefined = append(undefined, fmt.Sprintf("%s (%s)", id, locs[0]))
	}
	sort.Strings(undefined)
	section("Undefined ids (used in code, not in "+primaryLocale+")", undefined)

	var missing []string
	for file, ids := range r.missing {
		for _, id := range ids {
			missing = append(missing, file+": "+id)
		}
	}
	sort.Strings(missing)
	section("Missing translations", missing)
	section("Orphaned ids (not used in code)", r.orphaned)
}

// findUsedKeys scans non-test .go files for i18n.T calls. _examples and
// tools are skipped.
func findUsedKeys(root string) (usage, error) {
	u := usage{exact: map[string][]string{}, prefixes: map[string]struct{}{}}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "tools", "_examples", ".git":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range exactRe.FindAllStringSubmatch(line, -1) {
				u.exact[m[1]] = append(u.exact[m[1]], fmt.Sprintf("%s:%d", path, i+1))
			}
			for _, m := range prefixRe.FindAllStringSubmatch(line, -1) {
				u.prefixes[m[1]] = struct{}{}
			}
		}
		return nil
	})
	return u, err
}

// loadKeysFromLocale reads a locale file and returns its message ids. Flat
// dotted keys and nested maps both yield dotted ids.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, val := range m {
		id := k
		if prefix != "" {
			id = prefix + "." + k
		}
		flattenYAML(id, val, keys)
	}
}
