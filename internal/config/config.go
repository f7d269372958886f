// Package config loads per-project validation settings. A project
// configures gantry through `.gantry.yml` or `gantry.toml` at the
// repository root (or any parent of the validated path); the YAML form
// wins when both exist.
//
// Configuration is a consumer-side concern: the engine always runs the
// full rule set, and the CLI applies rule toggles, severity overrides,
// and ignore patterns to the result afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"gantry/diag"
)

// yamlName and tomlName are the recognized config file names, in
// preference order.
const (
	yamlName = ".gantry.yml"
	tomlName = "gantry.toml"
)

// RuleConfig adjusts one rule.
type RuleConfig struct {
	// Enabled defaults to true when absent.
	Enabled *bool `yaml:"enabled" toml:"enabled"`
	// Severity remaps the rule's diagnostics: "error", "warning" or
	// "info". Empty keeps the rule's own severity.
	Severity string `yaml:"severity" toml:"severity"`
}

// Config is the parsed project configuration.
type Config struct {
	// Rules maps rule ids to overrides. Unknown ids are ignored so a
	// shared config survives version skew.
	Rules map[string]RuleConfig `yaml:"rules" toml:"rules"`
	// Ignore holds doublestar glob patterns of paths to skip, relative
	// to the config file's directory.
	Ignore []string `yaml:"ignore" toml:"ignore"`

	// Dir is the directory the config was loaded from; ignore patterns
	// are resolved against it. Empty for the zero Config.
	Dir string `yaml:"-" toml:"-"`
}

// Find walks up from startDir to locate a config file. ok is false when
// no parent carries one; that is not an error.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range []string{yamlName, tomlName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the config file at path, dispatching on its name.
func Load(path string) (Config, error) {
	var cfg Config
	if filepath.Base(path) == tomlName {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the nearest config. The zero Config (no
// overrides, nothing ignored) is returned when no file exists.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Config{}, err
	}
	return Load(path)
}

func (c Config) validate() error {
	for id, rc := range c.Rules {
		if rc.Severity == "" {
			continue
		}
		if _, err := diag.ParseSeverity(rc.Severity); err != nil {
			return fmt.Errorf("rule %q: %w", id, err)
		}
	}
	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// Enabled reports whether the rule should be surfaced.
func (c Config) Enabled(rule string) bool {
	rc, ok := c.Rules[rule]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// Ignored reports whether the file path matches an ignore pattern.
// Patterns match against the path relative to the config directory,
// with slashes regardless of OS.
func (c Config) Ignored(path string) bool {
	if len(c.Ignore) == 0 {
		return false
	}
	rel := path
	if c.Dir != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(c.Dir, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Apply filters and remaps diagnostics according to the rule table:
// disabled rules drop out, severity overrides rewrite in place. Order
// is preserved; the input slice is not modified.
func (c Config) Apply(ds []diag.Diagnostic) []diag.Diagnostic {
	if len(c.Rules) == 0 {
		return ds
	}
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		if !c.Enabled(d.Rule) {
			continue
		}
		if rc, ok := c.Rules[d.Rule]; ok && rc.Severity != "" {
			if sev, err := diag.ParseSeverity(rc.Severity); err == nil {
				d.Severity = sev
			}
		}
		out = append(out, d)
	}
	return out
}
