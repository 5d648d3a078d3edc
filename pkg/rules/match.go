package rules

import (
	"unicode/utf8"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
)

// Products returns the files the rule creates: its outputs and benchmark.
func (r *Rule) Products() []*iofile.Pattern {
	products := r.Output()
	if r.benchmark != nil {
		products = append(products, r.benchmark)
	}
	return products
}

// IsProducer reports whether any product of the rule matches target.
func (r *Rule) IsProducer(target string) (bool, error) {
	for _, p := range r.Products() {
		_, ok, err := p.Match(target)
		if err != nil {
			return false, r.patternError(err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Wildcards matches target against every product and returns the binding
// of the most specific match: the one whose wildcard values are shortest
// in total. The first product wins ties. An empty target yields an empty
// binding.
func (r *Rule) Wildcards(target string) (Wildcards, error) {
	if target == "" {
		return Wildcards{}, nil
	}

	var best Wildcards
	bestLen := 0
	found := false
	for _, p := range r.Products() {
		binding, ok, err := p.Match(target)
		if err != nil {
			return nil, r.patternError(err)
		}
		if !ok {
			continue
		}
		l := wildcardLen(binding)
		if !found || bestLen > l {
			best, bestLen, found = binding, l, true
			r.logger.Debug().
				Str("target", target).
				Str("pattern", p.String()).
				Int("score", l).
				Msg("Better wildcard match")
		}
	}
	if !found {
		return nil, errors.Newf(errors.ErrNoMatch, "rule %s does not produce %s", r.name, target).
			WithDetail(errors.DetailRule, r.name).
			WithDetail(errors.DetailPath, target)
	}
	if err := r.checkWildcards(best); err != nil {
		return nil, err
	}
	return best, nil
}

func (r *Rule) checkWildcards(wildcards Wildcards) error {
	var missing []string
	for _, name := range r.wildcardNames.sorted() {
		if _, ok := wildcards[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrWildcardResolution,
		"could not resolve wildcards in rule %s: %v", r.name, missing).
		WithDetail(errors.DetailRule, r.name).
		WithDetail(errors.DetailMissing, missing).
		WithLocation(r.File, r.Line)
}

// wildcardLen is the specificity score of a binding, in characters.
func wildcardLen(binding map[string]string) int {
	n := 0
	for _, v := range binding {
		n += utf8.RuneCountInString(v)
	}
	return n
}
