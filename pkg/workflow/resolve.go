package workflow

import (
	"sort"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/rules"
)

// Producers returns every rule that can produce target, most preferred
// first: ruleorder decides, then higher priority, then declaration order.
func (w *Workflow) Producers(target string) ([]*rules.Rule, error) {
	var producers []*rules.Rule
	for _, r := range w.Rules() {
		ok, err := r.IsProducer(target)
		if err != nil {
			return nil, err
		}
		if ok {
			producers = append(producers, r)
		}
	}
	sort.SliceStable(producers, func(i, j int) bool {
		return w.prefer(producers[i], producers[j]) < 0
	})
	return producers, nil
}

// prefer orders two producers; 0 means they cannot be told apart.
func (w *Workflow) prefer(a, b *rules.Rule) int {
	if c := w.order.Compare(a, b); c != 0 {
		return c
	}
	switch {
	case a.Priority > b.Priority:
		return -1
	case a.Priority < b.Priority:
		return 1
	}
	return 0
}

// Resolve picks the rule that produces target and matches its wildcards.
// It fails with NO_MATCH when no rule produces target and with AMBIGUOUS
// when the two most preferred producers cannot be ordered.
func (w *Workflow) Resolve(target string) (*rules.Rule, rules.Wildcards, error) {
	producers, err := w.Producers(target)
	if err != nil {
		return nil, nil, err
	}
	if len(producers) == 0 {
		return nil, nil, errors.Newf(errors.ErrNoMatch, "no rule to produce %s", target).
			WithDetail(errors.DetailPath, target)
	}

	best := producers[0]
	if len(producers) > 1 && w.prefer(best, producers[1]) == 0 {
		var tied []string
		for _, p := range producers {
			if w.prefer(best, p) == 0 {
				tied = append(tied, p.Name())
			}
		}
		return nil, nil, errors.Newf(errors.ErrAmbiguous,
			"rules %v are ambiguous for the file %s; add a ruleorder or a priority", tied, target).
			WithDetail(errors.DetailPath, target).
			WithDetail("candidates", tied)
	}

	wildcards, err := best.Wildcards(target)
	if err != nil {
		return nil, nil, err
	}
	w.logger.Debug().
		Str("target", target).
		Str("rule", best.Name()).
		Str("wildcards", errors.FormatBinding(wildcards)).
		Int("candidates", len(producers)).
		Msg("Resolved producer")
	return best, wildcards, nil
}
