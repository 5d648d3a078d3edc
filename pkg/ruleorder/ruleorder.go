// Package ruleorder keeps the precedence declarations used to choose between
// rules that can produce the same file.
//
// Each Add appends a clause listing rule names from most to least
// preferred. Later clauses override earlier ones for the pairs they both
// mention. Reads never block: Compare works on an immutable snapshot of the
// clause list, so it is safe to call while clauses are being added.
package ruleorder

import (
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/logging"
)

// Rule is what Compare needs to know about a rule.
type Rule interface {
	Name() string
	HasWildcards() bool
}

// Clause is a precedence chain, most preferred rule first.
type Clause []string

func (c Clause) index(name string) int {
	for i, n := range c {
		if n == name {
			return i
		}
	}
	return -1
}

// Registry is an append-only list of clauses. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	clauses atomic.Pointer[[]Clause]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends a clause. A clause needs at least two distinct names.
func (r *Registry) Add(names ...string) error {
	if len(names) < 2 {
		return errors.Newf(errors.ErrInvalidInput, "ruleorder needs at least two rules, got %d", len(names))
	}
	clause := make(Clause, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" || seen[n] {
			return errors.Newf(errors.ErrInvalidInput, "invalid or repeated rule %q in ruleorder", n)
		}
		seen[n] = true
		clause[i] = n
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var next []Clause
	if old := r.clauses.Load(); old != nil {
		next = make([]Clause, len(*old), len(*old)+1)
		copy(next, *old)
	}
	next = append(next, clause)
	r.clauses.Store(&next)

	logger := logging.GetLogger("ruleorder")
	logger.Debug().
		Strs("clause", []string(clause)).
		Int("clauses", len(next)).
		Msg("Added ruleorder clause")
	return nil
}

// Clauses returns a copy of the clauses in the order they were added.
func (r *Registry) Clauses() []Clause {
	snapshot := r.snapshot()
	out := make([]Clause, len(snapshot))
	for i, c := range snapshot {
		out[i] = append(Clause(nil), c...)
	}
	return out
}

func (r *Registry) snapshot() []Clause {
	if p := r.clauses.Load(); p != nil {
		return *p
	}
	return nil
}

// Compare orders two rules. A negative result means a is preferred, a
// positive one that b is. The newest clause naming both rules decides.
// Without such a clause a rule without wildcards is preferred over one
// with wildcards; otherwise the rules are unordered and Compare returns 0.
func (r *Registry) Compare(a, b Rule) int {
	if a.Name() == b.Name() {
		return 0
	}
	clauses := r.snapshot()
	for i := len(clauses) - 1; i >= 0; i-- {
		ia, ib := clauses[i].index(a.Name()), clauses[i].index(b.Name())
		if ia < 0 || ib < 0 {
			continue
		}
		if ia < ib {
			return -1
		}
		return 1
	}

	switch wa, wb := a.HasWildcards(), b.HasWildcards(); {
	case !wa && wb:
		return -1
	case wa && !wb:
		return 1
	}
	return 0
}
