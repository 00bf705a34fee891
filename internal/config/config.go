// Copyright (c) 2026 PhiGEN Team
// PhiVault - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads PhiVault settings from defaults, a phivault.yaml file,
// PHIVAULT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of user-tunable settings.
type Config struct {
	Vault     VaultConfig     `mapstructure:"vault" yaml:"vault"`
	Policy    PolicyConfig    `mapstructure:"policy" yaml:"policy"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Language  string          `mapstructure:"language" yaml:"language"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type VaultConfig struct {
	Path           string        `mapstructure:"path" yaml:"path"`
	AutoLock       time.Duration `mapstructure:"auto_lock" yaml:"auto_lock"`
	ClipboardClear time.Duration `mapstructure:"clipboard_clear" yaml:"clipboard_clear"`
}

type PolicyConfig struct {
	MinMasterLength int `mapstructure:"min_master_length" yaml:"min_master_length"`
}

type GeneratorConfig struct {
	Length  int  `mapstructure:"length" yaml:"length"`
	Symbols bool `mapstructure:"symbols" yaml:"symbols"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

const (
	appName      = "phivault"
	envPrefix    = "phivault"
	DefaultVault = "~/phigen_vault.db"
)

// Defaults returns the built-in values for every key.
func Defaults() map[string]any {
	return map[string]any{
		"vault.path":               DefaultVault,
		"vault.auto_lock":          "5m",
		"vault.clipboard_clear":    "30s",
		"policy.min_master_length": 8,
		"generator.length":         16,
		"generator.symbols":        true,
		"language":                 "en",
		"log.level":                "info",
	}
}

// FlagKeys maps command-line flag names onto config keys where they differ.
// Flags not listed bind under their own name.
var FlagKeys = map[string]string{
	"vault":  "vault.path",
	"lang":   "language",
	"length": "generator.length",
}

// GetConfigPath returns the path of the user (or system-wide) config file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "PhiVault")
		default:
			configDir = "/etc/" + appName
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, appName)
	}

	return filepath.Join(configDir, appName+".yaml"), nil
}

// LoadConfig resolves a T from defaults, config file, environment and the
// flags of cmd. explicitPath, when set, replaces the search path. A
// zero-length config file counts as no file.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	readFile := true
	if explicitPath != nil && *explicitPath != "" {
		fi, err := os.Stat(*explicitPath)
		if err != nil {
			return c, fmt.Errorf("config file %s: %w", *explicitPath, err)
		}
		v.SetConfigFile(*explicitPath)
		readFile = fi.Size() > 0
	} else {
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if readFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isEmptyConfig(v) {
				return c, err
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		var bindErr error
		bind := func(f *pflag.Flag) {
			key := f.Name
			if k, ok := FlagKeys[f.Name]; ok {
				key = k
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

func searchDirs() []string {
	var dirs []string
	if p, err := GetConfigPath(false); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	return append(dirs, ".")
}

// isEmptyConfig reports whether the file viper picked up has no content.
func isEmptyConfig(v *viper.Viper) bool {
	used := v.ConfigFileUsed()
	if used == "" {
		return false
	}
	fi, err := os.Stat(used)
	return err == nil && fi.Size() == 0
}

// WriteConfigFile stores c as YAML in the user (or system) config location.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigTo(c, path)
}

// WriteConfigTo stores c as YAML at path with mode 0600.
func WriteConfigTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, p[1:]), nil
}

// VaultPath returns the configured vault location with "~" expanded.
func (c Config) VaultPath() (string, error) {
	p := c.Vault.Path
	if p == "" {
		p = DefaultVault
	}
	return ExpandPath(p)
}
