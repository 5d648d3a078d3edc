package rules

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/namedlist"
)

// InputExpansion is the result of ExpandInput.
type InputExpansion struct {
	Files *InputFiles
	// Mapping maps each concrete input to the pattern it was derived from.
	Mapping map[string]string
	// Dependencies maps concrete inputs to the rule producing them.
	Dependencies map[string]string
}

type applyOptions[T any] struct {
	concretize func(v any) (T, error)
	flatten    bool
	aux        Aux
}

// applyWildcards walks the declared items in order, calls deferred
// functions, flattens their sequence results when allowed and concretizes
// every value. Names follow the flattening: a named function returning N
// values names an N-wide range.
func applyWildcards[T any](r *Rule, decl *declared, wildcards Wildcards, opts applyOptions[T]) (*namedlist.List[T], error) {
	out := namedlist.New[T]()
	for _, entry := range decl.Entries() {
		start := out.Len()
		single := entry.Single
		for _, it := range entry.Items {
			values := []any{it.literal}
			if it.deferred() {
				v, err := r.applyFunc(it.fn.Fn, wildcards, opts.aux)
				if err != nil {
					return nil, err
				}
				values = []any{v}
				if opts.flatten || it.fn.Spread {
					if seq, ok := sequence(v); ok {
						values = seq
						single = false
					}
				}
			}
			for _, v := range values {
				c, err := opts.concretize(v)
				if err != nil {
					return nil, err
				}
				out.Append(c)
			}
		}
		if entry.Name == "" {
			continue
		}
		if single && out.Len() == start+1 {
			out.AddName(entry.Name)
		} else {
			out.SetName(entry.Name, start, out.Len())
		}
	}
	return out, nil
}

// applyFunc calls a user function. Errors and panics are reported as input
// function errors carrying the rule and the wildcards in effect.
func (r *Rule) applyFunc(fn Func, wildcards Wildcards, aux Aux) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = r.inputFunctionError(fmt.Errorf("panic: %v", rec), wildcards)
		}
	}()
	value, err = fn(wildcards.Clone(), aux)
	if err != nil {
		return nil, r.inputFunctionError(err, wildcards)
	}
	return value, nil
}

func (r *Rule) inputFunctionError(cause error, wildcards Wildcards) error {
	return errors.Wrapf(cause, errors.ErrInputFunction,
		"input function of rule %s failed with wildcards %s", r.name, errors.FormatBinding(wildcards)).
		WithDetail(errors.DetailRule, r.name).
		WithDetail(errors.DetailWildcards, map[string]string(wildcards.Clone())).
		WithLocation(r.File, r.Line)
}

// resolutionError adds the rule context to a wildcard resolution failure.
// Other errors pass through unchanged.
func (r *Rule) resolutionError(err error, what string) error {
	if !errors.IsErrorCode(err, errors.ErrWildcardResolution) {
		return err
	}
	e := errors.Wrapf(err, errors.ErrWildcardResolution,
		"wildcards in %s of rule %s cannot be determined from output files", what, r.name).
		WithDetail(errors.DetailRule, r.name).
		WithLocation(r.File, r.Line)
	if missing, ok := errors.GetErrorDetails(err)[errors.DetailMissing]; ok {
		e.WithDetail(errors.DetailMissing, missing)
	}
	return e
}

func (r *Rule) toFile(v any) (*iofile.Pattern, error) {
	switch f := v.(type) {
	case string:
		return iofile.New(f).WithRule(r.name), nil
	case *iofile.Pattern:
		if f != nil {
			return f, nil
		}
	}
	return nil, errors.Newf(errors.ErrInputFunction,
		"function of rule %s did not return a path or list of paths, got %T", r.name, v).
		WithDetail(errors.DetailRule, r.name).
		WithLocation(r.File, r.Line)
}

// ExpandInput concretizes the inputs. Unbound wildcards of dynamic inputs
// are filled with iofile.DynamicFill; any other unbound wildcard fails.
func (r *Rule) ExpandInput(wildcards Wildcards) (*InputExpansion, error) {
	mapping := make(map[string]string)
	files, err := applyWildcards(r, r.input, wildcards, applyOptions[*iofile.Pattern]{
		flatten: true,
		concretize: func(v any) (*iofile.Pattern, error) {
			f, err := r.toFile(v)
			if err != nil {
				return nil, err
			}
			dynamic := r.dynamicInput.has(f.String())
			if dynamic {
				if err := r.checkDynamicOverlap(f, wildcards); err != nil {
					return nil, err
				}
			}
			c, err := f.Apply(wildcards, iofile.ApplyOptions{
				FillMissing: dynamic,
				FailDynamic: r.IsDynamic(),
			})
			if err != nil {
				return nil, r.resolutionError(err, "input files")
			}
			mapping[c.String()] = f.String()
			return c, nil
		},
	})
	if err != nil {
		return nil, err
	}

	dependencies := make(map[string]string)
	for concrete, origin := range mapping {
		if rule, ok := r.dependencies[origin]; ok {
			dependencies[concrete] = rule
		}
	}

	for _, f := range files.Items() {
		if err := f.Check(); err != nil {
			return nil, err
		}
	}
	return &InputExpansion{Files: files, Mapping: mapping, Dependencies: dependencies}, nil
}

// checkDynamicOverlap rejects a dynamic input whose unbound wildcards are
// also wildcards of the rule's dynamic outputs.
func (r *Rule) checkDynamicOverlap(f *iofile.Pattern, wildcards Wildcards) error {
	if !r.IsDynamic() {
		return nil
	}
	var overlap []string
	for _, name := range f.WildcardNames() {
		if _, bound := wildcards[name]; bound {
			continue
		}
		if r.wildcardNames.has(name) {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	sort.Strings(overlap)
	return r.definitionError("dynamic input %s of rule %s cannot provide wildcards %v of its dynamic output", f, r.name, overlap).
		WithDetail(errors.DetailMissing, overlap)
}

// ExpandOutput concretizes the outputs. Names map 1:1 onto the declared
// outputs. The returned mapping maps concrete to declared outputs.
func (r *Rule) ExpandOutput(wildcards Wildcards) (*OutputFiles, map[string]string, error) {
	output := namedlist.New[*iofile.Pattern]()
	mapping := make(map[string]string)
	for _, it := range r.output.Items() {
		f := it.file()
		c, err := f.Apply(wildcards, iofile.ApplyOptions{})
		if err != nil {
			return nil, nil, r.resolutionError(err, "output files")
		}
		output.Append(c)
		mapping[c.String()] = f.String()
	}
	output.TakeNames(r.output.Names(), r.output.Ranges())

	for _, f := range output.Items() {
		if err := f.Check(); err != nil {
			return nil, nil, err
		}
	}
	return output, mapping, nil
}

// ExpandParams concretizes the params. Functions see the expanded input and
// resources. A function result is one param unless declared with Spread.
func (r *Rule) ExpandParams(wildcards Wildcards, input *InputFiles, resources Resources) (*Params, error) {
	return applyWildcards(r, r.params, wildcards, applyOptions[any]{
		aux: Aux{Input: input, Resources: resources},
		concretize: func(v any) (any, error) {
			switch p := v.(type) {
			case string:
				s, err := iofile.Format(p, wildcards)
				if err != nil {
					return nil, r.resolutionError(err, "params")
				}
				return s, nil
			case *iofile.Pattern:
				c, err := p.Apply(wildcards, iofile.ApplyOptions{})
				if err != nil {
					return nil, r.resolutionError(err, "params")
				}
				return c, nil
			}
			return v, nil
		},
	})
}

// ExpandLog concretizes the log files. Unbound wildcards always fail.
func (r *Rule) ExpandLog(wildcards Wildcards) (*Log, error) {
	log, err := applyWildcards(r, r.log, wildcards, applyOptions[*iofile.Pattern]{
		flatten: true,
		concretize: func(v any) (*iofile.Pattern, error) {
			f, err := r.toFile(v)
			if err != nil {
				return nil, err
			}
			c, err := f.Apply(wildcards, iofile.ApplyOptions{FailDynamic: r.IsDynamic()})
			if err != nil {
				return nil, r.resolutionError(err, "log files")
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, err
	}
	for _, f := range log.Items() {
		if err := f.Check(); err != nil {
			return nil, err
		}
	}
	return log, nil
}

// ExpandBenchmark concretizes the benchmark file. It returns nil when the
// rule has none.
func (r *Rule) ExpandBenchmark(wildcards Wildcards) (*iofile.Pattern, error) {
	if r.benchmark == nil {
		return nil, nil
	}
	b, err := r.benchmark.Apply(wildcards, iofile.ApplyOptions{})
	if err != nil {
		return nil, r.resolutionError(err, "benchmark file")
	}
	if err := b.Check(); err != nil {
		return nil, err
	}
	return b, nil
}

// ExpandResources resolves every resource and caps it by the workflow's
// global resources of the same name.
func (r *Rule) ExpandResources(wildcards Wildcards, input *InputFiles) (Resources, error) {
	caps := r.ctx.GlobalResources()
	out := make(Resources, len(r.resources))
	for _, name := range r.ResourceNames() {
		res := r.resources[name]
		amount := res.amount
		if res.fn != nil {
			v, err := r.applyFunc(res.fn, wildcards, Aux{Input: input})
			if err != nil {
				return nil, err
			}
			n, ok := asInt(v)
			if !ok {
				return nil, errors.Newf(errors.ErrResourceType,
					"resources function %s of rule %s did not return an integer, got %T", name, r.name, v).
					WithDetail(errors.DetailRule, r.name).
					WithDetail(errors.DetailWildcards, map[string]string(wildcards.Clone())).
					WithLocation(r.File, r.Line)
			}
			amount = n
		}
		if limit, ok := caps[name]; ok && limit < amount {
			amount = limit
		}
		out[name] = amount
	}
	return out, nil
}
