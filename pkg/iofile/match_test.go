// Test Type: Unit Test
// Description: Tests for matching concrete paths and substituting wildcards

package iofile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		template string
		target   string
		wantOK   bool
		want     map[string]string
	}{
		{
			name:     "simple",
			template: "out/{sample}.txt",
			target:   "out/a.txt",
			wantOK:   true,
			want:     map[string]string{"sample": "a"},
		},
		{
			name:     "wrong_suffix",
			template: "out/{sample}.txt",
			target:   "out/a.csv",
			wantOK:   false,
		},
		{
			name:     "anchored_at_both_ends",
			template: "out/{sample}.txt",
			target:   "x/out/a.txt.bak",
			wantOK:   false,
		},
		{
			name:     "default_regex_spans_directories",
			template: "out/{path}.txt",
			target:   "out/a/b.txt",
			wantOK:   true,
			want:     map[string]string{"path": "a/b"},
		},
		{
			name:     "repeated_wildcard_must_agree",
			template: "{a}/{a}.txt",
			target:   "x/x.txt",
			wantOK:   true,
			want:     map[string]string{"a": "x"},
		},
		{
			name:     "repeated_wildcard_disagrees",
			template: "{a}/{a}.txt",
			target:   "x/y.txt",
			wantOK:   false,
		},
		{
			name:     "constraint_accepts",
			template: `chunk{n,\d+}.txt`,
			target:   "chunk12.txt",
			wantOK:   true,
			want:     map[string]string{"n": "12"},
		},
		{
			name:     "constraint_rejects",
			template: `chunk{n,\d+}.txt`,
			target:   "chunkab.txt",
			wantOK:   false,
		},
		{
			name:     "regex_metacharacters_in_literal",
			template: "a+b.{ext}",
			target:   "a+b.txt",
			wantOK:   true,
			want:     map[string]string{"ext": "txt"},
		},
		{
			name:     "literal_braces",
			template: "a{{b}}.{ext}",
			target:   "a{b}.txt",
			wantOK:   true,
			want:     map[string]string{"ext": "txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := iofile.New(tt.template).Match(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatch_InvalidConstraint(t *testing.T) {
	_, _, err := iofile.New("{a,(}.txt").Match("x.txt")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPattern))
}

func TestApply(t *testing.T) {
	t.Run("substitutes_all_occurrences", func(t *testing.T) {
		p, err := iofile.New("{a}/{b}/{a}.txt").Apply(map[string]string{"a": "1", "b": "2"}, iofile.ApplyOptions{})
		require.NoError(t, err)
		assert.Equal(t, "1/2/1.txt", p.Path())
		assert.False(t, p.HasWildcards())
	})

	t.Run("keeps_flags_and_rule", func(t *testing.T) {
		p, err := iofile.Temp("{a}.txt").WithRule("r").Apply(map[string]string{"a": "x"}, iofile.ApplyOptions{})
		require.NoError(t, err)
		assert.True(t, p.Is(iofile.FlagTemp))
		assert.Equal(t, "r", p.Rule())
	})

	t.Run("missing_wildcards_fail", func(t *testing.T) {
		_, err := iofile.New("in/{missing}/{other}.txt").Apply(map[string]string{}, iofile.ApplyOptions{})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrWildcardResolution))
		assert.Equal(t, []string{"missing", "other"}, errors.GetErrorDetails(err)[errors.DetailMissing])
	})

	t.Run("fill_missing", func(t *testing.T) {
		p, err := iofile.New("in/{a}/{b}.txt").Apply(map[string]string{"a": "x"}, iofile.ApplyOptions{FillMissing: true})
		require.NoError(t, err)
		assert.Equal(t, "in/x/"+iofile.DynamicFill+".txt", p.Path())
	})

	t.Run("fail_dynamic", func(t *testing.T) {
		_, err := iofile.New("in/{a}.txt").Apply(map[string]string{"a": iofile.DynamicFill}, iofile.ApplyOptions{FailDynamic: true})
		assert.True(t, errors.IsErrorCode(err, errors.ErrWildcardResolution))
	})

	t.Run("substituted_value_is_literal", func(t *testing.T) {
		p, err := iofile.New("{a}.txt").Apply(map[string]string{"a": "{b}"}, iofile.ApplyOptions{})
		require.NoError(t, err)
		assert.False(t, p.HasWildcards())
		assert.Equal(t, "{b}.txt", p.Path())
		assert.Equal(t, "{{b}}.txt", p.String())
	})
}

func TestPartialAndExpand(t *testing.T) {
	t.Run("partial_closes_other_wildcards", func(t *testing.T) {
		p := iofile.New("{a}/{b}.txt").Partial([]string{"b"})
		assert.Equal(t, []string{"b"}, p.WildcardNames())

		c, err := p.Apply(map[string]string{"b": "1"}, iofile.ApplyOptions{})
		require.NoError(t, err)
		assert.Equal(t, "{a}/1.txt", c.String())
	})

	t.Run("expand_zips_in_order_and_reopens", func(t *testing.T) {
		files, err := iofile.Dynamic("{a}/{b}_{c}.txt").Partial([]string{"b", "c"}).Expand(map[string][]string{
			"b": {"1", "2", "3"},
			"c": {"x", "y", "z"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"{a}/1_x.txt", "{a}/2_y.txt", "{a}/3_z.txt"}, iofile.Strings(files))
		for _, f := range files {
			assert.Equal(t, []string{"a"}, f.WildcardNames())
			assert.True(t, f.Is(iofile.FlagDynamic))
		}
	})

	t.Run("expand_unequal_lengths", func(t *testing.T) {
		_, err := iofile.New("{a}{b}").Expand(map[string][]string{"a": {"1"}, "b": {"1", "2"}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
	})

	t.Run("expand_empty", func(t *testing.T) {
		files, err := iofile.New("{a}").Expand(map[string][]string{"a": {}})
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestFormat(t *testing.T) {
	s, err := iofile.Format("--sample {sample} --ref {{ref}}", map[string]string{"sample": "a"})
	require.NoError(t, err)
	assert.Equal(t, "--sample a --ref {ref}", s)

	_, err = iofile.Format("{nope}", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWildcardResolution))
}
