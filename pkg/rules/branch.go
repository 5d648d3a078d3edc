package rules

import (
	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
)

type replacement struct {
	index int
	old   *iofile.Pattern
	files []*iofile.Pattern
}

// DynamicBranch specializes a copy of the rule for the values discovered for
// its dynamic files. Each wildcard maps to a sequence of values; sequences
// are zipped, so they must all have the same length. With input set the
// dynamic inputs are expanded, otherwise the dynamic outputs.
//
// Each dynamic file is replaced in place by one file per discovered
// instance. For outputs the branch is then fully expanded with the
// wildcards that took a single value, and that binding is returned too.
//
// A nil branch without error means the values are not known yet: a
// wildcard has no values. The rule itself is never modified.
func (r *Rule) DynamicBranch(wildcards DynamicWildcards, input bool) (*Rule, Wildcards, error) {
	if len(wildcards) == 0 {
		return nil, nil, nil
	}
	for _, values := range wildcards {
		if len(values) == 0 {
			return nil, nil, nil
		}
	}

	branch, err := r.Clone()
	if err != nil {
		return nil, nil, err
	}
	list, dynamic := branch.output, branch.dynamicOutput
	if input {
		list, dynamic = branch.input, branch.dynamicInput
	}

	names := wildcards.Names()
	var replacements []replacement
	for i, it := range list.Items() {
		f := it.file()
		if f == nil || !dynamic.has(f.String()) {
			continue
		}
		files, err := f.Partial(names).Expand(wildcards)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.GetErrorCode(err),
				"expanding dynamic file %s of rule %s", f, r.name).
				WithDetail(errors.DetailRule, r.name).
				WithLocation(r.File, r.Line)
		}
		replacements = append(replacements, replacement{index: i, old: f, files: files})
	}

	// splice from the back so earlier indices stay valid
	for k := len(replacements) - 1; k >= 0; k-- {
		rep := replacements[k]
		dynamic.remove(rep.old.String())
		items := make([]item, len(rep.files))
		for j, f := range rep.files {
			items[j] = literal(f)
		}
		list.Replace(rep.index, items)
	}

	r.logger.Debug().
		Bool("input", input).
		Int("replaced", len(replacements)).
		Msg("Created dynamic branch")

	if input {
		return branch, nil, nil
	}

	for _, rep := range replacements {
		for _, set := range []stringSet{branch.tempOutput, branch.protectedOutput, branch.touchOutput} {
			key := rep.old.String()
			if !set.has(key) {
				continue
			}
			set.remove(key)
			for _, f := range rep.files {
				set.add(f.String())
			}
		}
	}

	branch.wildcardNames = make(stringSet)
	fixed := wildcards.Collapse()
	if err := branch.concretize(fixed); err != nil {
		return nil, nil, err
	}
	return branch, fixed, nil
}

// concretize replaces every declared field with its expansion.
func (r *Rule) concretize(wildcards Wildcards) error {
	in, err := r.ExpandInput(wildcards)
	if err != nil {
		return err
	}
	out, _, err := r.ExpandOutput(wildcards)
	if err != nil {
		return err
	}
	res, err := r.ExpandResources(wildcards, in.Files)
	if err != nil {
		return err
	}
	params, err := r.ExpandParams(wildcards, in.Files, res)
	if err != nil {
		return err
	}
	log, err := r.ExpandLog(wildcards)
	if err != nil {
		return err
	}
	benchmark, err := r.ExpandBenchmark(wildcards)
	if err != nil {
		return err
	}

	r.input = literalList(in.Files)
	r.dependencies = in.Dependencies
	r.output = literalList(out)
	r.resources = make(map[string]resource, len(res))
	for name, amount := range res {
		r.resources[name] = resource{amount: amount}
	}
	r.params = literalList(params)
	r.log = literalList(log)
	r.benchmark = benchmark
	return nil
}
