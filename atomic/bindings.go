package atomic

import (
	"sort"
	"strings"
)

// Lookup resolves variable names to terms
type Lookup interface {
	Lookup(name Variable) (Term, bool)
}

// Bindings is a substitution from variable names to terms. It is never
// modified in place: With and Extend return new environments, so a search
// branch can be abandoned without undoing anything. The zero value is an
// empty environment.
type Bindings struct {
	vars map[Variable]Term
}

// NewBindings copies a map into an environment
func NewBindings(m map[Variable]Term) Bindings {
	vars := make(map[Variable]Term, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Bindings{vars: vars}
}

// Lookup returns the term bound to name
func (b Bindings) Lookup(name Variable) (Term, bool) {
	t, ok := b.vars[name]
	return t, ok
}

// Len returns the number of bound variables
func (b Bindings) Len() int { return len(b.vars) }

// IsEmpty reports whether nothing is bound
func (b Bindings) IsEmpty() bool { return len(b.vars) == 0 }

// Names returns the bound variable names in sorted order
func (b Bindings) Names() []Variable {
	names := make([]Variable, 0, len(b.vars))
	for k := range b.vars {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// With returns a new environment that also binds name to t
func (b Bindings) With(name Variable, t Term) Bindings {
	vars := make(map[Variable]Term, len(b.vars)+1)
	for k, v := range b.vars {
		vars[k] = v
	}
	vars[name] = t
	return Bindings{vars: vars}
}

// Extend returns b plus every binding of delta. It refuses, returning
// false, when delta would rebind a variable to a different term.
func (b Bindings) Extend(delta Bindings) (Bindings, bool) {
	if delta.IsEmpty() {
		return b, true
	}
	if b.IsEmpty() {
		return delta, true
	}
	vars := make(map[Variable]Term, len(b.vars)+len(delta.vars))
	for k, v := range b.vars {
		vars[k] = v
	}
	for k, v := range delta.vars {
		if old, ok := vars[k]; ok && !TermsEqual(old, v) {
			return b, false
		}
		vars[k] = v
	}
	return Bindings{vars: vars}, true
}

// Each calls fn for every binding in name order
func (b Bindings) Each(fn func(name Variable, t Term)) {
	for _, name := range b.Names() {
		fn(name, b.vars[name])
	}
}

func (b Bindings) String() string {
	parts := make([]string, 0, len(b.vars))
	b.Each(func(name Variable, t Term) {
		parts = append(parts, string(name)+" ~ "+t.String())
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

// Walk follows variable bindings until it reaches a non-variable term or an
// unbound variable.
func Walk(l Lookup, t Term) Term {
	// A chain can never be longer than the number of distinct variables;
	// the seen set guards against a cycle introduced by a caller.
	var seen map[Variable]bool
	for {
		v, ok := t.(Variable)
		if !ok {
			return t
		}
		next, bound := l.Lookup(v)
		if !bound {
			return t
		}
		if seen == nil {
			seen = make(map[Variable]bool)
		}
		if seen[v] {
			return t
		}
		seen[v] = true
		t = next
	}
}

// Resolve reduces t to a literal value under l. Expressions are evaluated;
// anything that does not resolve to a value (an unbound variable, a pattern,
// a failing expression) reports false.
func Resolve(l Lookup, t Term) (Value, bool) {
	switch v := Walk(l, t).(type) {
	case Literal:
		return v.Value, true
	case Expression:
		val, err := v.Evaluate(l)
		if err != nil {
			return nil, false
		}
		return val, true
	}
	return nil, false
}
