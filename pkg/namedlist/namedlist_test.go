// Test Type: Unit Test
// Description: Tests for the ordered list with named ranges

package namedlist_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulekit/pkg/namedlist"
)

func TestNames(t *testing.T) {
	l := namedlist.New("a")
	l.AddName("first")
	l.Append("b", "c")
	l.SetName("rest", 1, 3)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"first", "rest"}, l.Names())

	one, ok := l.One("first")
	require.True(t, ok)
	assert.Equal(t, "a", one)

	rest, ok := l.Get("rest")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, rest)

	_, ok = l.Get("missing")
	assert.False(t, ok)

	r, _ := l.Range("first")
	assert.True(t, r.Single)
	assert.Equal(t, 1, r.Len())
}

func TestAddName_EmptyList(t *testing.T) {
	l := namedlist.New[int]()
	l.AddName("x")
	assert.Empty(t, l.Names())
}

func TestNilList(t *testing.T) {
	var l *namedlist.List[string]
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Items())
	assert.Nil(t, l.Names())
	assert.Nil(t, l.Entries())
}

func TestEntries(t *testing.T) {
	l := namedlist.New("u0", "n1", "r2", "r3", "u4")
	l.SetName("range", 2, 4)
	l.SetName("one", 1, 2)

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, namedlist.Entry[string]{Items: []string{"u0"}, Single: true}, entries[0])
	assert.Equal(t, namedlist.Entry[string]{Name: "one", Items: []string{"n1"}}, entries[1])
	assert.Equal(t, namedlist.Entry[string]{Name: "range", Items: []string{"r2", "r3"}}, entries[2])
	assert.Equal(t, namedlist.Entry[string]{Items: []string{"u4"}, Single: true}, entries[3])
}

func TestReplace(t *testing.T) {
	t.Run("shifts_later_names", func(t *testing.T) {
		l := namedlist.New("a", "dyn", "c")
		l.SetName("tail", 2, 3)
		l.Replace(1, []string{"d1", "d2", "d3"})

		assert.Equal(t, []string{"a", "d1", "d2", "d3", "c"}, l.Items())
		tail, _ := l.Get("tail")
		assert.Equal(t, []string{"c"}, tail)
	})

	t.Run("widens_name_on_replaced_item", func(t *testing.T) {
		l := namedlist.New("a", "dyn")
		l.AddName("parts")
		l.Replace(1, []string{"p1", "p2"})

		parts, _ := l.Get("parts")
		assert.Equal(t, []string{"p1", "p2"}, parts)
		r, _ := l.Range("parts")
		assert.False(t, r.Single)
	})

	t.Run("grows_enclosing_range", func(t *testing.T) {
		l := namedlist.New("a", "dyn", "c")
		l.SetName("all", 0, 3)
		l.Replace(1, []string{"d1", "d2"})

		all, _ := l.Get("all")
		assert.Equal(t, []string{"a", "d1", "d2", "c"}, all)
	})

	t.Run("empty_replacement", func(t *testing.T) {
		l := namedlist.New("a", "dyn", "c")
		l.SetName("last", 2, 3)
		l.Replace(1, nil)

		assert.Equal(t, []string{"a", "c"}, l.Items())
		last, _ := l.Get("last")
		assert.Equal(t, []string{"c"}, last)
	})
}

func TestCloneAndMap(t *testing.T) {
	l := namedlist.New(1, 2, 3)
	l.SetName("pair", 0, 2)

	c := l.Clone()
	c.Append(4)
	c.SetName("pair", 1, 3)
	assert.Equal(t, 3, l.Len(), "clone does not share items")
	pair, _ := l.Get("pair")
	assert.Equal(t, []int{1, 2}, pair, "clone does not share names")

	m := namedlist.Map(l, strconv.Itoa)
	assert.Equal(t, []string{"1", "2", "3"}, m.Items())
	mp, _ := m.Get("pair")
	assert.Equal(t, []string{"1", "2"}, mp)

	other := namedlist.New("x", "y")
	other.TakeNames(l.Names(), l.Ranges())
	op, _ := other.Get("pair")
	assert.Equal(t, []string{"x", "y"}, op)
}
