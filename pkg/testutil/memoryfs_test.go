// Test Type: Unit Test
// Description: Tests for the in-memory filesystem helpers

package testutil_test

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/testutil"
)

func TestNewMemoryFS(t *testing.T) {
	fs := testutil.NewMemoryFS(t, map[string]string{
		"reads/a.fq":    "@r1",
		"ref/genome.fa": ">chr1",
	})

	data, err := afero.ReadFile(fs, "reads/a.fq")
	require.NoError(t, err)
	assert.Equal(t, "@r1", string(data))

	info, err := fs.Stat("ref")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTempFile(t *testing.T) {
	path := testutil.TempFile(t, "Rulefile.toml", "[[rules]]\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[[rules]]\n", string(data))
}
