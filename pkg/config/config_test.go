// Test Type: Unit Test
// Description: Tests for layered configuration loading

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Logging.Verbosity)
	assert.Equal(t, config.FormatAuto, cfg.Output.Format)
	assert.NotNil(t, cfg.Resources)
	assert.Empty(t, cfg.Resources)
	assert.NotNil(t, cfg.WildcardConstraints)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "rulekit.toml",
			content: `
[output]
format = "json"

[resources]
_cores = 4
mem_mb = 1000

[wildcard_constraints]
sample = "[a-z]+"
`,
		},
		{
			name: "yaml",
			file: "rulekit.yaml",
			content: `
output:
  format: json
resources:
  _cores: 4
  mem_mb: 1000
wildcard_constraints:
  sample: "[a-z]+"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tt.file, tt.content), nil)
			require.NoError(t, err)

			assert.Equal(t, config.FormatJSON, cfg.Output.Format)
			assert.Equal(t, map[string]int{"_cores": 4, "mem_mb": 1000}, cfg.Resources)
			assert.Equal(t, map[string]string{"sample": "[a-z]+"}, cfg.WildcardConstraints)
			assert.Equal(t, 0, cfg.Logging.Verbosity, "untouched keys keep their defaults")
		})
	}
}

func TestLoad_Layering(t *testing.T) {
	path := writeFile(t, "rulekit.toml", `
[logging]
verbosity = 1

[resources]
_cores = 4
`)

	t.Run("env_overrides_file", func(t *testing.T) {
		t.Setenv("RULEKIT_RESOURCES___CORES", "2")
		t.Setenv("RULEKIT_OUTPUT__FORMAT", "yaml")

		cfg, err := config.Load(path, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.Resources["_cores"])
		assert.Equal(t, config.FormatYAML, cfg.Output.Format)
		assert.Equal(t, 1, cfg.Logging.Verbosity)
	})

	t.Run("overrides_win", func(t *testing.T) {
		t.Setenv("RULEKIT_LOGGING__VERBOSITY", "2")

		cfg, err := config.Load(path, map[string]any{"logging.verbosity": 3})
		require.NoError(t, err)

		assert.Equal(t, 3, cfg.Logging.Verbosity)
	})
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RULEKIT_LOGGING__VERBOSITY", "logging.verbosity"},
		{"RULEKIT_RESOURCES___CORES", "resources._cores"},
		{"RULEKIT_RESOURCES__MEM_MB", "resources.mem_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, config.EnvKey(tt.in))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.ErrorCode
	}{
		{"unsupported_extension", "rulekit.ini", "x=1", errors.ErrConfigLoad},
		{"malformed_toml", "rulekit.toml", "[output\nformat=", errors.ErrConfigLoad},
		{"unknown_format", "rulekit.toml", "[output]\nformat = \"xml\"", errors.ErrConfigParse},
		{"unknown_key", "rulekit.toml", "colour = true", errors.ErrConfigParse},
		{"zero_cap", "rulekit.toml", "[resources]\n_cores = 0", errors.ErrConfigParse},
		{"non_integer_cap", "rulekit.toml", "[resources]\n_cores = \"many\"", errors.ErrConfigParse},
		{"invalid_constraint", "rulekit.toml", "[wildcard_constraints]\nsample = \"(\"", errors.ErrConfigParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.file, tt.content), nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"), nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}

func TestToTOML(t *testing.T) {
	cfg := config.Default()
	cfg.Resources["_cores"] = 8
	cfg.WildcardConstraints["sample"] = `\w+`

	data, err := cfg.ToTOML()
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, gotoml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)

	assert.Contains(t, config.DefaultContent(), "[wildcard_constraints]")
}
