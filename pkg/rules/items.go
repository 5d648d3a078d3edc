package rules

import (
	"sort"

	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/namedlist"
)

// Wildcards is a concrete binding of wildcard names to values.
type Wildcards map[string]string

// Get returns the value bound to name, or "".
func (w Wildcards) Get(name string) string { return w[name] }

// Names returns the bound names in sorted order.
func (w Wildcards) Names() []string {
	names := make([]string, 0, len(w))
	for n := range w {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (w Wildcards) Clone() Wildcards {
	c := make(Wildcards, len(w))
	for k, v := range w {
		c[k] = v
	}
	return c
}

// DynamicWildcards binds each wildcard to the values discovered for a
// dynamic output. Sequences are zipped positionally.
type DynamicWildcards map[string][]string

// Names returns the bound names in sorted order.
func (d DynamicWildcards) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Collapse returns the wildcards whose sequence holds a single distinct
// value, bound to that value.
func (d DynamicWildcards) Collapse() Wildcards {
	out := make(Wildcards)
	for name, values := range d {
		if len(values) == 0 {
			continue
		}
		single := true
		for _, v := range values[1:] {
			if v != values[0] {
				single = false
				break
			}
		}
		if single {
			out[name] = values[0]
		}
	}
	return out
}

// Concrete sets produced by expansion.
type (
	InputFiles  = namedlist.List[*iofile.Pattern]
	OutputFiles = namedlist.List[*iofile.Pattern]
	Log         = namedlist.List[*iofile.Pattern]
	Params      = namedlist.List[any]
)

// Resources maps resource names to resolved amounts.
type Resources map[string]int

// Aux carries already expanded values visible to deferred functions.
// Input is set for params and resources, Resources for params only.
type Aux struct {
	Input     *InputFiles
	Resources Resources
}

// Func computes a deferred item from the wildcards of a job. It may return
// a string, an *iofile.Pattern, a slice of those, or for params and
// resources any value.
type Func func(wildcards Wildcards, aux Aux) (any, error)

// Deferred declares an item whose value is computed at expansion time.
type Deferred struct {
	Fn Func
	// Spread makes a deferred param contribute one entry per element of a
	// returned sequence instead of a single opaque value.
	Spread bool
}

// Defer wraps fn as a deferred item.
func Defer(fn Func) Deferred { return Deferred{Fn: fn} }

// Spread wraps fn as a deferred param whose sequence result is split:
// a returned slice yields one params entry per element, all under the
// item's name. Params declared with Defer keep a returned slice as one
// value; nothing is flattened unless it is declared with Spread.
func Spread(fn Func) Deferred { return Deferred{Fn: fn, Spread: true} }

type namedItems struct {
	name  string
	items []any
}

// Named binds name to items so the expanded values can be looked up by it.
// Naming several items, or a list, names the whole contiguous range.
func Named(name string, items ...any) any {
	return namedItems{name: name, items: items}
}

// item is a declared field entry: a literal or a deferred function.
type item struct {
	literal any
	fn      *Deferred
}

func literal(v any) item { return item{literal: v} }

func (it item) deferred() bool { return it.fn != nil }

// file returns the literal as a pattern, or nil.
func (it item) file() *iofile.Pattern {
	p, _ := it.literal.(*iofile.Pattern)
	return p
}

type declared = namedlist.List[item]

func literalList[T any](l *namedlist.List[T]) *declared {
	return namedlist.Map(l, func(v T) item { return literal(v) })
}

// stringSet is a set of declared pattern strings.
type stringSet map[string]struct{}

func (s stringSet) add(v string)      { s[v] = struct{}{} }
func (s stringSet) remove(v string)   { delete(s, v) }
func (s stringSet) has(v string) bool { _, ok := s[v]; return ok }

func (s stringSet) clone() stringSet {
	c := make(stringSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
