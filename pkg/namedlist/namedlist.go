// Package namedlist provides an ordered list whose items can additionally
// be addressed by name. A name refers either to a single position or to a
// contiguous range, so naming a list of inputs names all of its elements.
package namedlist

import (
	"sort"
)

// Range is a half-open span [Start, End) of positions. Single ranges
// always have End == Start+1 and resolve to one value rather than a slice.
type Range struct {
	Start  int
	End    int
	Single bool
}

// Len returns the number of positions covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Entry is one step of a walk over the list: either an unnamed item or a
// whole named range.
type Entry[T any] struct {
	Name   string
	Items  []T
	Single bool
}

// List is an ordered sequence with a name to range table.
type List[T any] struct {
	items []T
	names map[string]Range
	order []string
}

// New creates a list holding items.
func New[T any](items ...T) *List[T] {
	l := &List[T]{}
	l.items = append(l.items, items...)
	return l
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the item at position i.
func (l *List[T]) At(i int) T {
	return l.items[i]
}

// Items returns a copy of the items in order.
func (l *List[T]) Items() []T {
	if l == nil {
		return nil
	}
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Append adds items at the end.
func (l *List[T]) Append(items ...T) {
	l.items = append(l.items, items...)
}

// AddName names the last item.
func (l *List[T]) AddName(name string) {
	n := len(l.items)
	if n == 0 {
		return
	}
	l.setRange(name, Range{Start: n - 1, End: n, Single: true})
}

// SetName names the range [start, end). A range of one item set this way
// still resolves to a slice.
func (l *List[T]) SetName(name string, start, end int) {
	l.setRange(name, Range{Start: start, End: end})
}

func (l *List[T]) setRange(name string, r Range) {
	if l.names == nil {
		l.names = make(map[string]Range)
	}
	if _, ok := l.names[name]; !ok {
		l.order = append(l.order, name)
	}
	l.names[name] = r
}

// Range returns the range bound to name.
func (l *List[T]) Range(name string) (Range, bool) {
	if l == nil || l.names == nil {
		return Range{}, false
	}
	r, ok := l.names[name]
	return r, ok
}

// Get returns the items bound to name.
func (l *List[T]) Get(name string) ([]T, bool) {
	r, ok := l.Range(name)
	if !ok {
		return nil, false
	}
	out := make([]T, r.Len())
	copy(out, l.items[r.Start:r.End])
	return out, true
}

// One returns the first item bound to name.
func (l *List[T]) One(name string) (T, bool) {
	var zero T
	r, ok := l.Range(name)
	if !ok || r.Len() == 0 {
		return zero, false
	}
	return l.items[r.Start], true
}

// Names returns the bound names in the order they were first set.
func (l *List[T]) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Ranges returns a copy of the name table.
func (l *List[T]) Ranges() map[string]Range {
	out := make(map[string]Range, len(l.order))
	for _, n := range l.order {
		out[n] = l.names[n]
	}
	return out
}

// TakeNames copies a name table onto this list.
func (l *List[T]) TakeNames(names []string, ranges map[string]Range) {
	for _, n := range names {
		if r, ok := ranges[n]; ok {
			l.setRange(n, r)
		}
	}
}

// Entries walks the list in position order, yielding unnamed items one by
// one and each named range as a single entry. Ranges are expected to be
// disjoint; a range overlapping an earlier one is not yielded.
func (l *List[T]) Entries() []Entry[T] {
	if l == nil {
		return nil
	}
	named := make([]string, len(l.order))
	copy(named, l.order)
	sort.SliceStable(named, func(i, j int) bool {
		ri, rj := l.names[named[i]], l.names[named[j]]
		if ri.Start != rj.Start {
			return ri.Start < rj.Start
		}
		return ri.End < rj.End
	})

	var out []Entry[T]
	next := 0
	for _, name := range named {
		r := l.names[name]
		if r.Start < next {
			continue
		}
		for i := next; i < r.Start; i++ {
			out = append(out, Entry[T]{Items: []T{l.items[i]}, Single: true})
		}
		items := make([]T, r.Len())
		copy(items, l.items[r.Start:r.End])
		out = append(out, Entry[T]{Name: name, Items: items, Single: r.Single})
		next = r.End
	}
	for i := next; i < len(l.items); i++ {
		out = append(out, Entry[T]{Items: []T{l.items[i]}, Single: true})
	}
	return out
}

// Replace substitutes the item at index with items, shifting later names.
// A name bound exactly to index is widened to cover the replacement and
// stays single only if the replacement is one item.
func (l *List[T]) Replace(index int, items []T) {
	tail := append([]T(nil), l.items[index+1:]...)
	l.items = append(append(l.items[:index], items...), tail...)

	shift := len(items) - 1
	for name, r := range l.names {
		switch {
		case r.Start > index:
			l.names[name] = Range{Start: r.Start + shift, End: r.End + shift, Single: r.Single}
		case r.Start == index && r.End == index+1:
			l.names[name] = Range{Start: index, End: index + len(items), Single: r.Single && len(items) == 1}
		case r.Start <= index && r.End > index:
			l.names[name] = Range{Start: r.Start, End: r.End + shift}
		}
	}
}

// Clone returns an independent copy. Items are copied shallowly.
func (l *List[T]) Clone() *List[T] {
	c := &List[T]{}
	if l == nil {
		return c
	}
	c.items = append(c.items, l.items...)
	c.TakeNames(l.order, l.names)
	return c
}

// Map builds a list of another type with the same name table.
func Map[T, U any](l *List[T], fn func(T) U) *List[U] {
	out := &List[U]{}
	for _, it := range l.Items() {
		out.items = append(out.items, fn(it))
	}
	if l != nil {
		out.TakeNames(l.order, l.names)
	}
	return out
}
