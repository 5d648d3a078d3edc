package rules

import (
	"reflect"
	"sort"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
)

type field int

const (
	fieldInput field = iota
	fieldOutput
	fieldParams
	fieldLog
)

func (f field) String() string {
	switch f {
	case fieldInput:
		return "input"
	case fieldOutput:
		return "output"
	case fieldParams:
		return "params"
	default:
		return "log"
	}
}

// SetInput adds input items. Items are strings, patterns, Deferred
// functions, Named groups or nested slices of those; slices are flattened
// in order.
func (r *Rule) SetInput(items ...any) error {
	return r.declare(r.input, fieldInput, items)
}

// SetOutput adds output items. Outputs cannot be deferred and every output
// must use the same wildcards.
func (r *Rule) SetOutput(items ...any) error {
	if err := r.declare(r.output, fieldOutput, items); err != nil {
		return err
	}
	for _, p := range r.Output() {
		if r.IsDynamic() && !r.dynamicOutput.has(p.String()) {
			return r.definitionError("rule %s with dynamic output may not define non-dynamic output %s", r.name, p)
		}
		names := p.WildcardSet()
		if !r.wildcardsSet {
			r.wildcardNames = names
			r.wildcardsSet = true
			continue
		}
		if !iofile.SameNames(r.wildcardNames, names) {
			return r.definitionError("not all output files of rule %s contain the same wildcards", r.name).
				WithDetail(errors.DetailWildcards, iofile.SortedNames(names))
		}
	}
	return nil
}

// SetParams adds params. Strings have wildcards substituted at expansion,
// other values are kept as they are.
func (r *Rule) SetParams(items ...any) error {
	return r.declare(r.params, fieldParams, items)
}

// SetLog adds log files.
func (r *Rule) SetLog(items ...any) error {
	return r.declare(r.log, fieldLog, items)
}

// SetBenchmark sets the benchmark file, a string or pattern.
func (r *Rule) SetBenchmark(v any) error {
	var p *iofile.Pattern
	switch b := v.(type) {
	case string:
		p = iofile.New(b)
	case *iofile.Pattern:
		p = b
	default:
		return r.definitionError("benchmark of rule %s must be a file path, got %T", r.name, v)
	}
	r.benchmark = p.WithRule(r.name)
	return nil
}

// SetWildcardConstraints merges constraint regexes into the rule. They
// apply to outputs registered afterwards.
func (r *Rule) SetWildcardConstraints(constraints map[string]string) error {
	names := make([]string, 0, len(constraints))
	for name := range constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		expr := constraints[name]
		if _, err := regexp2.Compile(expr, regexp2.None); err != nil {
			return errors.Wrapf(err, errors.ErrPattern,
				"invalid constraint for wildcard %s in rule %s", name, r.name).
				WithDetail(errors.DetailRule, r.name).
				WithLocation(r.File, r.Line)
		}
		r.wildcardConstraints[name] = expr
	}
	return nil
}

// SetResources declares resources as integers or Deferred functions
// returning integers.
func (r *Rule) SetResources(resources map[string]any) error {
	for name, v := range resources {
		if name == "" {
			return r.definitionError("rule %s declares a resource without a name", r.name)
		}
		if fn, ok := asFunc(v); ok {
			r.resources[name] = resource{fn: fn}
			continue
		}
		n, ok := asInt(v)
		if !ok {
			return errors.Newf(errors.ErrResourceType,
				"resource %s of rule %s must be an integer or a function, got %T", name, r.name, v).
				WithDetail(errors.DetailRule, r.name).
				WithLocation(r.File, r.Line)
		}
		r.resources[name] = resource{amount: n}
	}
	return nil
}

func (r *Rule) declare(l *declared, f field, items []any) error {
	for _, it := range items {
		if err := r.declareItem(l, f, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rule) declareItem(l *declared, f field, v any) error {
	switch it := v.(type) {
	case namedItems:
		if hasNamed(it.items) {
			return r.definitionError("named %s item %q of rule %s cannot contain other named items", f, it.name, r.name)
		}
		start := l.Len()
		if err := r.declare(l, f, it.items); err != nil {
			return err
		}
		if len(it.items) == 1 && !isSequence(it.items[0]) {
			l.AddName(it.name)
		} else {
			l.SetName(it.name, start, l.Len())
		}
		return nil
	case Deferred, *Deferred, Func, func(Wildcards, Aux) (any, error):
		d := toDeferred(it)
		if f == fieldOutput {
			return r.definitionError("only input files can be specified as functions (rule %s)", r.name)
		}
		if d.Fn == nil {
			return r.definitionError("nil function in %s of rule %s", f, r.name)
		}
		l.Append(item{fn: &d})
		return nil
	case string:
		if f == fieldParams {
			l.Append(literal(it))
			return nil
		}
		return r.declareFile(l, f, iofile.New(it))
	case *iofile.Pattern:
		if f == fieldParams {
			l.Append(literal(it))
			return nil
		}
		if it == nil {
			return r.definitionError("nil file in %s of rule %s", f, r.name)
		}
		return r.declareFile(l, f, it)
	}

	if seq, ok := sequence(v); ok {
		return r.declare(l, f, seq)
	}
	if f == fieldParams {
		l.Append(literal(v))
		return nil
	}
	return r.definitionError("%s files of rule %s have to be strings or lists of strings, got %T", f, r.name, v)
}

func (r *Rule) declareFile(l *declared, f field, p *iofile.Pattern) error {
	switch f {
	case fieldInput:
		return r.declareInput(l, p)
	case fieldOutput:
		return r.declareOutput(l, p)
	default:
		l.Append(literal(p.WithRule(r.name)))
		return nil
	}
}

func (r *Rule) declareInput(l *declared, p *iofile.Pattern) error {
	origin := p.Rule()
	if p.HasConstraints() {
		r.logger.Warn().Str("file", p.String()).Msg("wildcard constraints in inputs are ignored")
		p = p.StripConstraints()
	}
	q := p.WithRule(r.name)
	key := q.String()
	if origin != "" && origin != r.name {
		r.dependencies[key] = origin
	}
	if q.Is(iofile.FlagDynamic) {
		r.dynamicInput.add(key)
	}
	if q.Is(iofile.FlagAncient) {
		r.ancientInput.add(key)
	}
	if q.Is(iofile.FlagSubworkflow) {
		r.subworkflowInput[key] = q.Subworkflow()
	}
	l.Append(literal(q))
	return nil
}

func (r *Rule) declareOutput(l *declared, p *iofile.Pattern) error {
	if p.Is(iofile.FlagSubworkflow) {
		return r.definitionError("only input files may refer to a subworkflow (rule %s, %s)", r.name, p)
	}
	q := p.WithRule(r.name)
	if q.Is(iofile.FlagDynamic) {
		if q.HasConstraints() {
			return r.definitionError("dynamic output %s of rule %s may not carry wildcard constraints", q, r.name)
		}
	} else {
		var err error
		q, err = q.WithConstraints(r.wildcardConstraints, r.ctx.GlobalWildcardConstraints())
		if err != nil {
			return r.patternError(err)
		}
	}
	key := q.String()
	if q.Is(iofile.FlagAncient) {
		r.logger.Warn().Str("file", key).Msg("ancient flag has no effect on outputs")
	}
	if q.Is(iofile.FlagTemp) {
		r.tempOutput.add(key)
	}
	if q.Is(iofile.FlagProtected) {
		r.protectedOutput.add(key)
	}
	if q.Is(iofile.FlagTouch) {
		r.touchOutput.add(key)
	}
	if q.Is(iofile.FlagDynamic) {
		r.dynamicOutput.add(key)
	}
	l.Append(literal(q))
	return nil
}

func (r *Rule) patternError(err error) error {
	return errors.Wrapf(err, errors.ErrPattern, "invalid wildcard statement in rule %s", r.name).
		WithDetail(errors.DetailRule, r.name).
		WithLocation(r.File, r.Line)
}

func toDeferred(v any) Deferred {
	switch d := v.(type) {
	case Deferred:
		return d
	case *Deferred:
		if d == nil {
			return Deferred{}
		}
		return *d
	case Func:
		return Deferred{Fn: d}
	case func(Wildcards, Aux) (any, error):
		return Deferred{Fn: d}
	}
	return Deferred{}
}

func asFunc(v any) (Func, bool) {
	switch v.(type) {
	case Deferred, *Deferred, Func, func(Wildcards, Aux) (any, error):
		d := toDeferred(v)
		return d.Fn, d.Fn != nil
	}
	return nil, false
}

// asInt accepts any integer kind.
func asInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	}
	return 0, false
}

// sequence returns the elements of a slice or array, except strings and
// byte slices.
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []*iofile.Pattern:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// hasNamed reports whether items, or any sequence among them, holds a
// Named item.
func hasNamed(items []any) bool {
	for _, v := range items {
		if _, ok := v.(namedItems); ok {
			return true
		}
		if seq, ok := sequence(v); ok && hasNamed(seq) {
			return true
		}
	}
	return false
}

func isSequence(v any) bool {
	if _, ok := v.(namedItems); ok {
		return true
	}
	_, ok := sequence(v)
	return ok
}
