package workflow

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/logging"
	"github.com/arthur-debert/rulekit/pkg/registry"
	"github.com/arthur-debert/rulekit/pkg/ruleorder"
	"github.com/arthur-debert/rulekit/pkg/rules"
)

// Workflow is the context rules are declared in.
type Workflow struct {
	mu          sync.RWMutex
	resources   map[string]int
	constraints map[string]string

	rules     registry.Registry[*rules.Rule]
	functions registry.Registry[rules.Func]
	order     *ruleorder.Registry
	fs        afero.Fs
	logger    zerolog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithFs sets the filesystem used to check for existing files.
func WithFs(fs afero.Fs) Option {
	return func(w *Workflow) { w.fs = fs }
}

// WithResources sets global resource caps.
func WithResources(caps map[string]int) Option {
	return func(w *Workflow) { w.SetResources(caps) }
}

// WithWildcardConstraints sets global wildcard constraints.
func WithWildcardConstraints(constraints map[string]string) Option {
	return func(w *Workflow) { w.SetWildcardConstraints(constraints) }
}

// New creates an empty workflow on the OS filesystem.
func New(opts ...Option) *Workflow {
	w := &Workflow{
		resources:   make(map[string]int),
		constraints: make(map[string]string),
		rules:       registry.New[*rules.Rule](),
		functions:   registry.New[rules.Func](),
		order:       ruleorder.New(),
		fs:          afero.NewOsFs(),
		logger:      logging.GetLogger("workflow"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FromConfig creates a workflow using the caps and constraints of cfg.
// Options are applied after the configuration.
func FromConfig(cfg *config.Config, opts ...Option) *Workflow {
	base := []Option{
		WithResources(cfg.Resources),
		WithWildcardConstraints(cfg.WildcardConstraints),
	}
	return New(append(base, opts...)...)
}

// GlobalResources implements rules.Context.
func (w *Workflow) GlobalResources() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return copyMap(w.resources)
}

// GlobalWildcardConstraints implements rules.Context.
func (w *Workflow) GlobalWildcardConstraints() map[string]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return copyMap(w.constraints)
}

// SetResources merges caps into the global resource caps.
func (w *Workflow) SetResources(caps map[string]int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, v := range caps {
		w.resources[k] = v
	}
}

// SetWildcardConstraints merges global wildcard constraints. They only
// apply to outputs declared afterwards.
func (w *Workflow) SetWildcardConstraints(constraints map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, v := range constraints {
		w.constraints[k] = v
	}
}

// Fs returns the filesystem used for existence checks.
func (w *Workflow) Fs() afero.Fs { return w.fs }

// Ruleorder returns the precedence registry.
func (w *Workflow) Ruleorder() *ruleorder.Registry { return w.order }

// AddRule creates and registers an empty rule. file and line locate the
// declaration for error messages.
func (w *Workflow) AddRule(name, file string, line int) (*rules.Rule, error) {
	if name == "" {
		return nil, errors.New(errors.ErrDefinition, "rule name must not be empty").
			WithLocation(file, line)
	}
	r := rules.New(name, w)
	r.File, r.Line = file, line
	if err := w.rules.Register(name, r); err != nil {
		if errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			return nil, errors.Wrapf(err, errors.ErrDefinition, "the name %s is already used by another rule", name).
				WithDetail(errors.DetailRule, name).
				WithLocation(file, line)
		}
		return nil, err
	}
	w.logger.Debug().Str("rule", name).Str("file", file).Int("line", line).Msg("Added rule")
	return r, nil
}

// Rule returns the named rule.
func (w *Workflow) Rule(name string) (*rules.Rule, error) {
	return w.rules.Get(name)
}

// Rules returns every rule in declaration order.
func (w *Workflow) Rules() []*rules.Rule {
	return w.rules.Values()
}

// RegisterFunc makes fn available to definition files under name.
func (w *Workflow) RegisterFunc(name string, fn rules.Func) error {
	if fn == nil {
		return errors.Newf(errors.ErrInvalidInput, "function %s is nil", name)
	}
	return w.functions.Register(name, fn)
}

// Func returns the function registered under name.
func (w *Workflow) Func(name string) (rules.Func, error) {
	return w.functions.Get(name)
}

// Funcs returns the registered function names in registration order.
func (w *Workflow) Funcs() []string {
	return w.functions.List()
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
