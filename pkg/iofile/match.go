package iofile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// ApplyOptions control how missing wildcards are handled by Apply.
type ApplyOptions struct {
	// FillMissing substitutes DynamicFill for unbound wildcards instead of
	// failing.
	FillMissing bool
	// FailDynamic rejects bindings whose value is DynamicFill.
	FailDynamic bool
}

func (p *Pattern) regex() (*regexp2.Regexp, error) {
	p.re.once.Do(func() {
		expr := p.tmpl.regex()
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			p.re.err = errors.Wrapf(err, errors.ErrPattern,
				"invalid wildcard regex in %s", p.String()).
				WithDetail(errors.DetailPath, p.String())
			return
		}
		p.re.re = re
	})
	return p.re.re, p.re.err
}

// Match matches a concrete path against the pattern and returns the
// wildcard binding. ok is false when the path does not match.
func (p *Pattern) Match(target string) (binding map[string]string, ok bool, err error) {
	re, err := p.regex()
	if err != nil {
		return nil, false, err
	}
	m, err := re.FindStringMatch(target)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrPattern, "matching %s against %s", target, p.String())
	}
	if m == nil {
		return nil, false, nil
	}
	binding = make(map[string]string)
	for _, name := range p.tmpl.openNames() {
		if g := m.GroupByName(name); g != nil {
			binding[name] = g.String()
		}
	}
	return binding, true, nil
}

// Apply substitutes wildcard values and returns the resulting pattern.
// Closed wildcards are left untouched.
func (p *Pattern) Apply(wildcards map[string]string, opts ApplyOptions) (*Pattern, error) {
	tmpl := make(template, 0, len(p.tmpl))
	var missing []string
	for _, tok := range p.tmpl {
		if !tok.slot || tok.closed {
			tmpl = append(tmpl, tok)
			continue
		}
		value, ok := wildcards[tok.text]
		switch {
		case ok && opts.FailDynamic && value == DynamicFill:
			return nil, errors.Newf(errors.ErrWildcardResolution,
				"wildcard %s of %s is still dynamic", tok.text, p.String()).
				WithDetail(errors.DetailMissing, []string{tok.text})
		case ok:
			tmpl = append(tmpl, token{text: value})
		case opts.FillMissing:
			tmpl = append(tmpl, token{text: DynamicFill})
		default:
			missing = appendUnique(missing, tok.text)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.Newf(errors.ErrWildcardResolution,
			"missing wildcards %s in %s", strings.Join(missing, ", "), p.String()).
			WithDetail(errors.DetailMissing, missing).
			WithDetail(errors.DetailPath, p.String())
	}
	return p.derive(tmpl.compact()), nil
}

// Expand substitutes positionally zipped wildcard sequences and returns one
// pattern per position, in order. Closed wildcards are reopened in the
// results. All sequences must have the same length.
func (p *Pattern) Expand(values map[string][]string) ([]*Pattern, error) {
	n, err := zippedLen(values)
	if err != nil {
		return nil, err
	}
	out := make([]*Pattern, 0, n)
	for i := 0; i < n; i++ {
		binding := make(map[string]string, len(values))
		for name, seq := range values {
			binding[name] = seq[i]
		}
		c, err := p.Apply(binding, ApplyOptions{})
		if err != nil {
			return nil, err
		}
		out = append(out, c.reopen())
	}
	return out, nil
}

func zippedLen(values map[string][]string) (int, error) {
	n := -1
	for name, seq := range values {
		if n == -1 {
			n = len(seq)
			continue
		}
		if len(seq) != n {
			return 0, errors.Newf(errors.ErrDefinition,
				"wildcard %s has %d values, expected %d", name, len(seq), n)
		}
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// Format substitutes wildcards into an arbitrary string, e.g. a parameter.
func Format(s string, wildcards map[string]string) (string, error) {
	c, err := New(s).Apply(wildcards, ApplyOptions{})
	if err != nil {
		return "", err
	}
	return c.Path(), nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// GoString helps test failure output.
func (p *Pattern) GoString() string {
	if p.flags == 0 {
		return fmt.Sprintf("iofile.New(%q)", p.String())
	}
	return fmt.Sprintf("iofile.Flagged(%q, %s)", p.String(), p.flags)
}
