// Package iofile implements the file pattern entity used by rules: a path
// template with named wildcards, annotation flags and the rule it belongs to.
//
// A template such as "out/{sample}/{chunk,\d+}.txt" is parsed once into
// literal and wildcard tokens. Matching a concrete path against it yields a
// wildcard binding; applying a binding yields a concrete pattern. Patterns
// are immutable: every operation returns a new value, so a pattern can be
// shared freely between a rule and its branches.
package iofile

import (
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// DynamicFill is substituted for wildcards of dynamic inputs that cannot be
// determined yet.
const DynamicFill = "__rulekit_dynamic__"

// Pattern is a possibly wildcard-containing file path.
type Pattern struct {
	tmpl        template
	flags       Flags
	subworkflow string
	rule        string
	re          *lazyRegex
}

type lazyRegex struct {
	once sync.Once
	re   *regexp2.Regexp
	err  error
}

// New parses a path template.
func New(path string) *Pattern {
	return &Pattern{tmpl: parseTemplate(path).compact(), re: &lazyRegex{}}
}

// Flagged parses a path template and sets the given flags.
func Flagged(path string, flags Flags) *Pattern {
	p := New(path)
	p.flags = flags
	return p
}

// Temp marks an output for removal once all consumers have run.
func Temp(path string) *Pattern { return Flagged(path, FlagTemp) }

// Protected marks an output as write-protected.
func Protected(path string) *Pattern { return Flagged(path, FlagProtected) }

// Touch marks an output that is only touched.
func Touch(path string) *Pattern { return Flagged(path, FlagTouch) }

// Dynamic marks a pattern whose number of instances is discovered later.
func Dynamic(path string) *Pattern { return Flagged(path, FlagDynamic) }

// Ancient marks an input ignored for staleness checks.
func Ancient(path string) *Pattern { return Flagged(path, FlagAncient) }

// FromSubworkflow marks an input as produced by the named subworkflow.
func FromSubworkflow(path, workflow string) *Pattern {
	p := Flagged(path, FlagSubworkflow)
	p.subworkflow = workflow
	return p
}

func (p *Pattern) derive(tmpl template) *Pattern {
	return &Pattern{
		tmpl:        tmpl,
		flags:       p.flags,
		subworkflow: p.subworkflow,
		rule:        p.rule,
		re:          &lazyRegex{},
	}
}

// String returns the pattern in the form it would be declared.
func (p *Pattern) String() string {
	return p.tmpl.source()
}

// Path returns the file path with literal braces unescaped.
func (p *Pattern) Path() string {
	return p.tmpl.path()
}

// Flags returns the annotation flags.
func (p *Pattern) Flags() Flags { return p.flags }

// Is reports whether the pattern carries flag f.
func (p *Pattern) Is(f Flags) bool { return p.flags.Has(f) }

// Subworkflow returns the originating subworkflow tag, if any.
func (p *Pattern) Subworkflow() string { return p.subworkflow }

// Rule returns the name of the rule the pattern belongs to.
func (p *Pattern) Rule() string { return p.rule }

// WithRule returns a copy owned by the named rule.
func (p *Pattern) WithRule(rule string) *Pattern {
	c := p.derive(p.tmpl)
	c.rule = rule
	return c
}

// WithFlags returns a copy with the given flags added.
func (p *Pattern) WithFlags(flags Flags) *Pattern {
	c := p.derive(p.tmpl)
	c.flags |= flags
	return c
}

// CloneFlags returns a copy carrying the flags and subworkflow tag of other.
func (p *Pattern) CloneFlags(other *Pattern) *Pattern {
	c := p.derive(p.tmpl)
	c.flags = other.flags
	c.subworkflow = other.subworkflow
	return c
}

// WildcardNames returns the names of the open wildcards in order of first
// appearance.
func (p *Pattern) WildcardNames() []string {
	return p.tmpl.openNames()
}

// WildcardSet returns the wildcard names as a set.
func (p *Pattern) WildcardSet() map[string]struct{} {
	names := p.tmpl.openNames()
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// HasWildcards reports whether any open wildcard remains.
func (p *Pattern) HasWildcards() bool {
	return len(p.tmpl.openNames()) > 0
}

// HasConstraints reports whether any wildcard carries an inline regex.
func (p *Pattern) HasConstraints() bool {
	for _, tok := range p.tmpl {
		if tok.slot && tok.constraint != "" {
			return true
		}
	}
	return false
}

// StripConstraints returns a copy without inline wildcard regexes.
func (p *Pattern) StripConstraints() *Pattern {
	tmpl := p.tmpl.clone()
	for i := range tmpl {
		tmpl[i].constraint = ""
	}
	return p.derive(tmpl)
}

// WithConstraints fills in regexes for wildcards that have none, taking
// them from the rule first and the workflow second. Only the first
// occurrence of a wildcard is constrained, later ones are back-references.
// The resulting expression is compiled so malformed constraints fail here.
func (p *Pattern) WithConstraints(rule, global map[string]string) (*Pattern, error) {
	tmpl := p.tmpl.clone()
	seen := make(map[string]bool)
	for i, tok := range tmpl {
		if !tok.slot || seen[tok.text] {
			continue
		}
		seen[tok.text] = true
		if tok.constraint != "" {
			continue
		}
		if c, ok := rule[tok.text]; ok {
			tmpl[i].constraint = c
		} else if c, ok := global[tok.text]; ok {
			tmpl[i].constraint = c
		}
	}
	c := p.derive(tmpl)
	if _, err := c.regex(); err != nil {
		return nil, err
	}
	return c, nil
}

// Partial returns a copy where only the wildcards in names stay open. The
// others are closed and survive substitution verbatim.
func (p *Pattern) Partial(names []string) *Pattern {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	tmpl := p.tmpl.clone()
	for i, tok := range tmpl {
		if tok.slot {
			tmpl[i].closed = !keep[tok.text]
		}
	}
	return p.derive(tmpl)
}

func (p *Pattern) reopen() *Pattern {
	tmpl := p.tmpl.clone()
	for i := range tmpl {
		tmpl[i].closed = false
	}
	return p.derive(tmpl)
}

// Equal compares the declared form and flags of two patterns.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.String() == other.String() && p.flags == other.flags && p.subworkflow == other.subworkflow
}

// Strings renders a list of patterns.
func Strings(patterns []*Pattern) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.String()
	}
	return out
}

// SortedNames returns the keys of a wildcard set in sorted order.
func SortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SameNames reports whether two wildcard sets hold the same names.
func SameNames(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if _, ok := b[n]; !ok {
			return false
		}
	}
	return true
}

// isBlank reports whether a path is empty after trimming whitespace.
func isBlank(path string) bool {
	return strings.TrimSpace(path) == ""
}
