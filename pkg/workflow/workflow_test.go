// Test Type: Unit Test
// Description: Tests for workflow rule bookkeeping and producer resolution

package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/rules"
	"github.com/arthur-debert/rulekit/pkg/workflow"
)

// addRule declares a rule with the given outputs.
func addRule(t *testing.T, w *workflow.Workflow, name string, outputs ...any) *rules.Rule {
	t.Helper()
	r, err := w.AddRule(name, "Rulefile.toml", 0)
	require.NoError(t, err)
	require.NoError(t, r.SetOutput(outputs...))
	return r
}

func names(rs []*rules.Rule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

func TestAddRule(t *testing.T) {
	t.Run("keeps_declaration_order", func(t *testing.T) {
		w := workflow.New()
		for _, name := range []string{"zeta", "alpha", "mid"} {
			_, err := w.AddRule(name, "Rulefile.toml", 1)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(w.Rules()))
	})

	t.Run("records_location", func(t *testing.T) {
		w := workflow.New()
		r, err := w.AddRule("align", "Rulefile.toml", 12)
		require.NoError(t, err)
		assert.Equal(t, "Rulefile.toml", r.File)
		assert.Equal(t, 12, r.Line)

		got, err := w.Rule("align")
		require.NoError(t, err)
		assert.Same(t, r, got)
	})

	t.Run("duplicate_name", func(t *testing.T) {
		w := workflow.New()
		_, err := w.AddRule("align", "Rulefile.toml", 1)
		require.NoError(t, err)

		_, err = w.AddRule("align", "Rulefile.toml", 9)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
		assert.Equal(t, 9, errors.GetErrorDetails(err)[errors.DetailLine])
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := workflow.New().AddRule("", "Rulefile.toml", 1)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
	})

	t.Run("unknown_rule", func(t *testing.T) {
		_, err := workflow.New().Rule("nope")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Resources["_cores"] = 2
	cfg.WildcardConstraints["sample"] = "[a-z]+"

	w := workflow.FromConfig(cfg)
	assert.Equal(t, map[string]int{"_cores": 2}, w.GlobalResources())
	assert.Equal(t, map[string]string{"sample": "[a-z]+"}, w.GlobalWildcardConstraints())

	r := addRule(t, w, "r", "out/{sample}.txt")
	ok, err := r.IsProducer("out/abc.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsProducer("out/123.txt")
	require.NoError(t, err)
	assert.False(t, ok, "global constraint applies to outputs")
}

func TestRegisterFunc(t *testing.T) {
	w := workflow.New()
	fn := func(rules.Wildcards, rules.Aux) (any, error) { return "x", nil }

	require.NoError(t, w.RegisterFunc("x", fn))
	got, err := w.Func("x")
	require.NoError(t, err)
	v, err := got(nil, rules.Aux{})
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	assert.Equal(t, []string{"x"}, w.Funcs())

	assert.True(t, errors.IsErrorCode(w.RegisterFunc("x", fn), errors.ErrAlreadyExists))
	assert.True(t, errors.IsErrorCode(w.RegisterFunc("nil", nil), errors.ErrInvalidInput))
}

func TestProducers(t *testing.T) {
	t.Run("literal_rule_first", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "generic", "{name}.txt")
		addRule(t, w, "specific", "a.txt")

		producers, err := w.Producers("a.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"specific", "generic"}, names(producers))
	})

	t.Run("ruleorder_decides", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "first", "{name}.txt")
		addRule(t, w, "second", "{stem}.txt")
		require.NoError(t, w.Ruleorder().Add("second", "first"))

		producers, err := w.Producers("a.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, names(producers))
	})

	t.Run("priority_breaks_ties", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "low", "{name}.txt")
		high := addRule(t, w, "high", "{stem}.txt")
		high.Priority = 5

		producers, err := w.Producers("a.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"high", "low"}, names(producers))
	})

	t.Run("non_producers_skipped", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "csv", "{name}.csv")

		producers, err := w.Producers("a.txt")
		require.NoError(t, err)
		assert.Empty(t, producers)
	})
}

func TestResolve(t *testing.T) {
	t.Run("returns_rule_and_wildcards", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "sort", "sorted/{sample}.txt")

		r, wildcards, err := w.Resolve("sorted/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "sort", r.Name())
		assert.Equal(t, rules.Wildcards{"sample": "a"}, wildcards)
	})

	t.Run("no_producer", func(t *testing.T) {
		_, _, err := workflow.New().Resolve("missing.txt")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoMatch))
		assert.Equal(t, "missing.txt", errors.GetErrorDetails(err)[errors.DetailPath])
	})

	t.Run("ambiguous", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "a", "{name}.txt")
		addRule(t, w, "b", "{stem}.txt")
		addRule(t, w, "c", "{x}.{ext}")

		_, _, err := w.Resolve("f.txt")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguous))
		assert.Equal(t, []string{"a", "b", "c"}, errors.GetErrorDetails(err)["candidates"])
	})

	t.Run("ruleorder_removes_ambiguity", func(t *testing.T) {
		w := workflow.New()
		addRule(t, w, "a", "{name}.txt")
		addRule(t, w, "b", "{stem}.txt")
		require.NoError(t, w.Ruleorder().Add("b", "a"))

		r, _, err := w.Resolve("f.txt")
		require.NoError(t, err)
		assert.Equal(t, "b", r.Name())
	})
}
