// Package config loads and validates the tool configuration.
//
// Configuration lives in a verbump.yml / verbump.yaml / .verbump.yaml
// file at the repository root. Every field has a default, so running
// without a file gives standard conventional-commit behavior.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/verbump/verbump/internal/errors"
	"github.com/verbump/verbump/internal/parsing"
	"github.com/verbump/verbump/internal/rules"
	"github.com/verbump/verbump/internal/version"
)

// Default patterns for conventional commits and release tags.
const (
	// DefaultCommitPattern validates conventional commits and extracts
	// the type, scope, breaking flag and description.
	DefaultCommitPattern = `^(?P<type>[a-zA-Z]*)(?P<scope>\(.*\))?(?P<breaking>!)?:(?P<description>[\s\S]*)$`

	// DefaultTagPattern extracts the version from tags like v1.2.3 or
	// 1.2.3.
	DefaultTagPattern = `^v?(?P<version>.*)$`
)

// configFileNames are probed in order when no explicit path is given.
var configFileNames = []string{"verbump.yml", "verbump.yaml", ".verbump.yaml"}

// Config is the configuration subset the bump engine consumes.
type Config struct {
	// TagPattern extracts the version (and optional scope) from tag names.
	TagPattern string `mapstructure:"tag_pattern" yaml:"tag_pattern"`

	// CommitPattern validates commits and extracts type, scope, breaking
	// and description.
	CommitPattern string `mapstructure:"commit_pattern" yaml:"commit_pattern"`

	// BumpRules decide the increment, evaluated in order.
	BumpRules []rules.BumpRule `mapstructure:"bump_rules" yaml:"bump_rules"`

	// VersionScopes are the independently versioned units of the
	// repository. Empty means a single unscoped unit.
	VersionScopes []string `mapstructure:"version_scopes" yaml:"version_scopes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TagPattern:    DefaultTagPattern,
		CommitPattern: DefaultCommitPattern,
		BumpRules:     DefaultBumpRules(),
	}
}

// DefaultBumpRules mirrors common conventional-commit release policy:
// fixes and style changes patch, features and refactors minor, breaking
// changes major. The two major rules cover the "!" marker and the
// BREAKING CHANGE description footer independently.
func DefaultBumpRules() []rules.BumpRule {
	boolTrue := true
	return []rules.BumpRule{
		{Bump: version.IncrementPatch, Types: []string{"fix", "style"}},
		{Bump: version.IncrementMinor, Types: []string{"feat", "refactor", "perf"}},
		{Bump: version.IncrementMajor, IfBreakingField: &boolTrue},
		{Bump: version.IncrementMajor, IfBreakingDescription: &boolTrue},
	}
}

// Load reads the configuration from the given file, or from the first
// discovered default file when path is empty. A missing file is not an
// error: defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = discover()
	}
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	decodeHook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// A file that sets bump_rules replaces the defaults wholesale; a file
	// that omits them keeps them.
	if !v.IsSet("bump_rules") {
		cfg.BumpRules = DefaultBumpRules()
	}
	return cfg, nil
}

func discover() string {
	for _, name := range configFileNames {
		info, err := os.Stat(name)
		if err == nil && info.Mode().IsRegular() {
			return name
		}
	}
	return ""
}

// Validate compiles both patterns, checks the required capture groups
// and rejects rules without a valid bump.
func (c *Config) Validate() error {
	if err := validatePattern(c.CommitPattern, parsing.GroupType, parsing.GroupDescription); err != nil {
		return err
	}
	if err := validatePattern(c.TagPattern, parsing.GroupVersion); err != nil {
		return err
	}
	for i, rule := range c.BumpRules {
		switch rule.Bump {
		case version.IncrementMajor, version.IncrementMinor, version.IncrementPatch:
		default:
			return fmt.Errorf("bump_rules[%d]: missing or unknown bump", i)
		}
	}
	return nil
}

func validatePattern(pattern string, requiredGroups ...string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.Wrap(errors.KindInvalidRegexPattern, pattern, err)
	}

	groups := make(map[string]bool)
	for _, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = true
		}
	}
	for _, required := range requiredGroups {
		if !groups[required] {
			return errors.E(errors.KindInvalidRegexPattern,
				fmt.Sprintf("pattern %q is missing the required capture group %q", pattern, required))
		}
	}
	return nil
}

// Scopes returns the configured version scopes, mapping an empty set to
// the single unscoped default.
func (c *Config) Scopes() []string {
	if len(c.VersionScopes) == 0 {
		return []string{""}
	}
	return c.VersionScopes
}
