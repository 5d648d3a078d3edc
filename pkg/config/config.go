package config

import (
	"fmt"
	"sort"

	"github.com/dlclark/regexp2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// Output formats accepted by the CLI.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the effective engine configuration.
type Config struct {
	Logging             Logging           `koanf:"logging" toml:"logging" json:"logging" yaml:"logging"`
	Output              Output            `koanf:"output" toml:"output" json:"output" yaml:"output"`
	Resources           map[string]int    `koanf:"resources" toml:"resources" json:"resources" yaml:"resources"`
	WildcardConstraints map[string]string `koanf:"wildcard_constraints" toml:"wildcard_constraints" json:"wildcard_constraints" yaml:"wildcard_constraints"`
}

// Logging holds logger settings.
type Logging struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"`
}

// Output holds CLI rendering settings.
type Output struct {
	Format string `koanf:"format" toml:"format" json:"format" yaml:"format"`
}

// Default returns the configuration built from the embedded defaults alone.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return cfg
}

// Validate checks value ranges and compiles every global constraint.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatAuto, FormatText, FormatJSON, FormatYAML:
	default:
		return errors.Newf(errors.ErrConfigParse, "unknown output format %q", c.Output.Format).
			WithDetail("key", "output.format")
	}

	if c.Logging.Verbosity < 0 {
		return errors.Newf(errors.ErrConfigParse, "verbosity must not be negative, got %d", c.Logging.Verbosity).
			WithDetail("key", "logging.verbosity")
	}

	for _, name := range sortedKeys(c.Resources) {
		if c.Resources[name] < 1 {
			return errors.Newf(errors.ErrConfigParse, "resource cap %s must be at least 1, got %d", name, c.Resources[name]).
				WithDetail("key", "resources."+name)
		}
	}

	for _, name := range sortedKeys(c.WildcardConstraints) {
		if _, err := regexp2.Compile(c.WildcardConstraints[name], regexp2.None); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "invalid wildcard constraint for %s", name).
				WithDetail("key", "wildcard_constraints."+name)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
