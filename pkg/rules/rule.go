package rules

import (
	"sort"

	"github.com/mitchellh/copystructure"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/logging"
	"github.com/arthur-debert/rulekit/pkg/namedlist"
)

// Context exposes the workflow-wide settings a rule consults.
type Context interface {
	// GlobalResources returns caps applied to every rule's resources.
	GlobalResources() map[string]int
	// GlobalWildcardConstraints returns regexes for wildcards of every rule.
	GlobalWildcardConstraints() map[string]string
}

type emptyContext struct{}

func (emptyContext) GlobalResources() map[string]int              { return nil }
func (emptyContext) GlobalWildcardConstraints() map[string]string { return nil }

// Default resources every rule has.
const (
	ResourceCores = "_cores"
	ResourceNodes = "_nodes"
)

type resource struct {
	amount int
	fn     Func
}

// Rule is a named production step: how to derive output files from input
// files for any binding of its wildcards.
//
// Registration (the Set* methods) happens once while a workflow is loaded.
// Afterwards a rule is read-only and safe for concurrent matching and
// expansion; DynamicBranch works on a private copy.
type Rule struct {
	name string
	ctx  Context

	// Descriptive fields, set directly by loaders.
	Docstring string
	Message   string
	Priority  int
	Version   string
	File      string
	Line      int

	input     *declared
	output    *declared
	params    *declared
	log       *declared
	benchmark *iofile.Pattern

	wildcardConstraints map[string]string
	resources           map[string]resource

	wildcardNames stringSet
	wildcardsSet  bool

	tempOutput      stringSet
	protectedOutput stringSet
	touchOutput     stringSet
	dynamicOutput   stringSet
	dynamicInput    stringSet
	ancientInput    stringSet

	dependencies     map[string]string
	subworkflowInput map[string]string

	logger zerolog.Logger
}

// New creates an empty rule. ctx may be nil for rules outside a workflow.
func New(name string, ctx Context) *Rule {
	if ctx == nil {
		ctx = emptyContext{}
	}
	return &Rule{
		name:                name,
		ctx:                 ctx,
		input:               &declared{},
		output:              &declared{},
		params:              &declared{},
		log:                 &declared{},
		wildcardConstraints: make(map[string]string),
		resources: map[string]resource{
			ResourceCores: {amount: 1},
			ResourceNodes: {amount: 1},
		},
		wildcardNames:    make(stringSet),
		tempOutput:       make(stringSet),
		protectedOutput:  make(stringSet),
		touchOutput:      make(stringSet),
		dynamicOutput:    make(stringSet),
		dynamicInput:     make(stringSet),
		ancientInput:     make(stringSet),
		dependencies:     make(map[string]string),
		subworkflowInput: make(map[string]string),
		logger:           logging.GetLogger("rules").With().Str("rule", name).Logger(),
	}
}

// Name returns the rule name.
func (r *Rule) Name() string { return r.name }

func (r *Rule) String() string { return r.name }

// Equal reports whether two rules have the same name and outputs.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.name != other.name || r.output.Len() != other.output.Len() {
		return false
	}
	for i, it := range r.output.Items() {
		a, b := it.file(), other.output.At(i).file()
		if a == nil || b == nil || a.String() != b.String() {
			return false
		}
	}
	return true
}

// HasWildcards reports whether the outputs contain wildcards.
func (r *Rule) HasWildcards() bool { return len(r.wildcardNames) > 0 }

// WildcardNames returns the output wildcard names in sorted order.
func (r *Rule) WildcardNames() []string { return r.wildcardNames.sorted() }

// WildcardConstraints returns a copy of the rule's constraint regexes.
func (r *Rule) WildcardConstraints() map[string]string {
	out := make(map[string]string, len(r.wildcardConstraints))
	for k, v := range r.wildcardConstraints {
		out[k] = v
	}
	return out
}

// Input returns the declared input patterns. Deferred items are omitted.
func (r *Rule) Input() []*iofile.Pattern { return patterns(r.input) }

// Output returns the declared output patterns.
func (r *Rule) Output() []*iofile.Pattern { return patterns(r.output) }

// Log returns the declared log patterns. Deferred items are omitted.
func (r *Rule) Log() []*iofile.Pattern { return patterns(r.log) }

// Benchmark returns the benchmark pattern, or nil.
func (r *Rule) Benchmark() *iofile.Pattern { return r.benchmark }

// OutputNamed returns the declared outputs bound to name.
func (r *Rule) OutputNamed(name string) []*iofile.Pattern {
	items, _ := r.output.Get(name)
	var out []*iofile.Pattern
	for _, it := range items {
		if p := it.file(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ParamCount returns the number of declared param items.
func (r *Rule) ParamCount() int { return r.params.Len() }

// ResourceNames returns the declared resource names in sorted order.
func (r *Rule) ResourceNames() []string {
	names := make([]string, 0, len(r.resources))
	for n := range r.resources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dependencies maps declared inputs to the rule producing them.
func (r *Rule) Dependencies() map[string]string { return copyStrings(r.dependencies) }

// SubworkflowInput maps declared inputs to their subworkflow.
func (r *Rule) SubworkflowInput() map[string]string { return copyStrings(r.subworkflowInput) }

// TempOutput lists outputs flagged temp.
func (r *Rule) TempOutput() []string { return r.tempOutput.sorted() }

// ProtectedOutput lists outputs flagged protected.
func (r *Rule) ProtectedOutput() []string { return r.protectedOutput.sorted() }

// TouchOutput lists outputs flagged touch.
func (r *Rule) TouchOutput() []string { return r.touchOutput.sorted() }

// DynamicOutput lists outputs flagged dynamic.
func (r *Rule) DynamicOutput() []string { return r.dynamicOutput.sorted() }

// DynamicInput lists inputs flagged dynamic.
func (r *Rule) DynamicInput() []string { return r.dynamicInput.sorted() }

// AncientInput lists inputs flagged ancient.
func (r *Rule) AncientInput() []string { return r.ancientInput.sorted() }

// IsDynamic reports whether the rule has dynamic outputs.
func (r *Rule) IsDynamic() bool { return len(r.dynamicOutput) > 0 }

// Clone returns a deep copy that shares no mutable state with r. Patterns
// are immutable and shared; literal param values are deep-copied.
func (r *Rule) Clone() (*Rule, error) {
	c := *r
	c.input = r.input.Clone()
	c.output = r.output.Clone()
	c.log = r.log.Clone()

	var copyErr error
	c.params = namedlist.Map(r.params, func(it item) item {
		if it.deferred() || copyErr != nil {
			return it
		}
		v, err := copystructure.Copy(it.literal)
		if err != nil {
			copyErr = err
			return it
		}
		return literal(v)
	})
	if copyErr != nil {
		return nil, errors.Wrapf(copyErr, errors.ErrInternal, "copying params of rule %s", r.name)
	}

	c.wildcardConstraints = r.WildcardConstraints()
	c.resources = make(map[string]resource, len(r.resources))
	for k, v := range r.resources {
		c.resources[k] = v
	}
	c.wildcardNames = r.wildcardNames.clone()
	c.tempOutput = r.tempOutput.clone()
	c.protectedOutput = r.protectedOutput.clone()
	c.touchOutput = r.touchOutput.clone()
	c.dynamicOutput = r.dynamicOutput.clone()
	c.dynamicInput = r.dynamicInput.clone()
	c.ancientInput = r.ancientInput.clone()
	c.dependencies = copyStrings(r.dependencies)
	c.subworkflowInput = copyStrings(r.subworkflowInput)
	return &c, nil
}

func (r *Rule) definitionError(format string, args ...interface{}) *errors.RuleError {
	return errors.Newf(errors.ErrDefinition, format, args...).
		WithDetail(errors.DetailRule, r.name).
		WithLocation(r.File, r.Line)
}

func patterns(l *declared) []*iofile.Pattern {
	var out []*iofile.Pattern
	for _, it := range l.Items() {
		if p := it.file(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
