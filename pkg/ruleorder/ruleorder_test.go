// Test Type: Unit Test
// Description: Tests for the ruleorder precedence registry

package ruleorder_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/ruleorder"
)

type fakeRule struct {
	name      string
	wildcards bool
}

func (f fakeRule) Name() string       { return f.name }
func (f fakeRule) HasWildcards() bool { return f.wildcards }

func TestCompare(t *testing.T) {
	a := fakeRule{name: "a", wildcards: true}
	b := fakeRule{name: "b", wildcards: true}

	t.Run("clause_decides", func(t *testing.T) {
		reg := ruleorder.New()
		require.NoError(t, reg.Add("b", "a"))

		assert.Equal(t, 1, reg.Compare(a, b), "b precedes a")
		assert.Equal(t, -1, reg.Compare(b, a))
	})

	t.Run("later_clause_overrides", func(t *testing.T) {
		reg := ruleorder.New()
		require.NoError(t, reg.Add("b", "a"))
		require.NoError(t, reg.Add("a", "b"))

		assert.Equal(t, -1, reg.Compare(a, b))
	})

	t.Run("unrelated_later_clause_does_not_interfere", func(t *testing.T) {
		reg := ruleorder.New()
		require.NoError(t, reg.Add("b", "a"))
		require.NoError(t, reg.Add("a", "c"))

		assert.Equal(t, 1, reg.Compare(a, b))
	})

	t.Run("chain_positions", func(t *testing.T) {
		reg := ruleorder.New()
		require.NoError(t, reg.Add("x", "b", "y", "a"))

		assert.Equal(t, 1, reg.Compare(a, b))
	})

	t.Run("fallback_prefers_rule_without_wildcards", func(t *testing.T) {
		reg := ruleorder.New()
		literal := fakeRule{name: "literal"}

		assert.Equal(t, -1, reg.Compare(literal, a))
		assert.Equal(t, 1, reg.Compare(a, literal))
	})

	t.Run("unordered", func(t *testing.T) {
		reg := ruleorder.New()
		assert.Equal(t, 0, reg.Compare(a, b))
		assert.Equal(t, 0, reg.Compare(fakeRule{name: "x"}, fakeRule{name: "y"}))
		assert.Equal(t, 0, reg.Compare(a, a))
	})

	t.Run("zero_value_registry", func(t *testing.T) {
		var reg ruleorder.Registry
		assert.Equal(t, 0, reg.Compare(a, b))
		require.NoError(t, reg.Add("a", "b"))
		assert.Equal(t, -1, reg.Compare(a, b))
	})
}

func TestAdd_Invalid(t *testing.T) {
	reg := ruleorder.New()

	tests := []struct {
		name  string
		names []string
	}{
		{"empty", nil},
		{"single", []string{"a"}},
		{"repeated", []string{"a", "b", "a"}},
		{"blank_name", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Add(tt.names...)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
	assert.Empty(t, reg.Clauses())
}

func TestClauses_ReturnsCopies(t *testing.T) {
	reg := ruleorder.New()
	names := []string{"a", "b"}
	require.NoError(t, reg.Add(names...))
	names[0] = "changed"

	clauses := reg.Clauses()
	require.Len(t, clauses, 1)
	assert.Equal(t, ruleorder.Clause{"a", "b"}, clauses[0])

	clauses[0][0] = "mutated"
	assert.Equal(t, ruleorder.Clause{"a", "b"}, reg.Clauses()[0])
}

func TestConcurrentAddAndCompare(t *testing.T) {
	reg := ruleorder.New()
	a := fakeRule{name: "a", wildcards: true}
	b := fakeRule{name: "b", wildcards: true}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.Add(fmt.Sprintf("r%d", i), fmt.Sprintf("s%d", i))
		}(i)
		go func() {
			defer wg.Done()
			assert.Equal(t, 0, reg.Compare(a, b))
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Clauses(), 20)
}
