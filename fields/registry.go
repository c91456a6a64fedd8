// Package fields declares the card schema the DSL compiles against: field
// names, their aliases, storage kind, colon-operator strategy, allowed
// operators and value parser. The registry is injected rather than read
// from a package global (spec.md §9): callers construct one with
// NewDefaultRegistry and pass it through the grammar and compiler.
package fields

import "fmt"

// StorageKind is the underlying column shape a Field maps to.
type StorageKind int

const (
	Text StorageKind = iota
	Numeric
	Set
	Map
	Bool
)

// ColonStrategy selects how the `:` operator behaves for a Field
// (spec.md §4.2).
type ColonStrategy int

const (
	Exact ColonStrategy = iota
	Pattern
	Contains
	Subset
)

// Operator is one of the punctuation tokens the grammar recognizes for
// field_pred (spec.md §3.1).
type Operator string

const (
	OpColon Operator = ":"
	OpEq    Operator = "="
	OpNeq   Operator = "!="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
)

var AllOperators = []Operator{OpColon, OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte}

// NumericDomain distinguishes the two numeric subtypes a Storage=Numeric
// field can be backed by. Only meaningful when Storage is Numeric; an
// Arith predicate mixing domains (e.g. an integer rank against a float
// mana cost) is rejected rather than silently compiled (SPEC_FULL.md §8
// decision 2).
type NumericDomain int

const (
	DomainNone NumericDomain = iota
	DomainInteger
	DomainFloat
)

// Field describes one column of the card schema as the DSL sees it.
type Field struct {
	// Name is the canonical field name (what the compiler uses to look up
	// Column); Aliases are additional spellings accepted by the grammar.
	Name    string
	Aliases []string

	Column        string
	Storage       StorageKind
	ColonStrategy ColonStrategy
	AllowedOps    map[Operator]bool
	Parse         ValueParser

	// Domain is the numeric subtype backing this field when Storage is
	// Numeric; zero value (DomainNone) for every other Storage kind.
	Domain NumericDomain

	// NullSatisfiesNegation controls whether `-field:value` matches rows
	// where the column is NULL, per spec.md §9's per-field negation rule.
	NullSatisfiesNegation bool
}

func (f *Field) Allows(op Operator) bool {
	return f.AllowedOps != nil && f.AllowedOps[op]
}

func ops(allowed ...Operator) map[Operator]bool {
	m := make(map[Operator]bool, len(allowed))
	for _, o := range allowed {
		m[o] = true
	}
	return m
}

// Registry is an injectable, immutable-after-construction field table.
type Registry struct {
	byName  map[string]*Field
	ordered []*Field
}

// NewRegistry builds a Registry from an explicit field list, validating
// the injectivity invariant (spec.md §8 property 4): no two canonical
// names may share an alias, and no alias may collide with another field's
// canonical name.
func NewRegistry(fieldList []*Field) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Field, len(fieldList)*2)}
	for _, f := range fieldList {
		if err := r.add(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(f *Field) error {
	keys := append([]string{f.Name}, f.Aliases...)
	for _, k := range keys {
		if existing, ok := r.byName[k]; ok {
			return fmt.Errorf("alias/name collision: %q already maps to field %q, cannot also map to %q", k, existing.Name, f.Name)
		}
	}
	for _, k := range keys {
		r.byName[k] = f
	}
	r.ordered = append(r.ordered, f)
	return nil
}

// Lookup resolves a canonical name or alias. ok is false for unknown
// fields (the caller raises UnknownField with the offending token).
func (r *Registry) Lookup(name string) (*Field, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Fields returns all registered fields in registration order.
func (r *Registry) Fields() []*Field {
	return r.ordered
}

// ValidateRegistry re-checks the injectivity invariant against an already
// constructed Registry; useful as a standalone test assertion mirroring
// spec.md §8 property 4.
func ValidateRegistry(r *Registry) error {
	seen := make(map[string]string, len(r.byName))
	for _, f := range r.ordered {
		keys := append([]string{f.Name}, f.Aliases...)
		for _, k := range keys {
			if owner, ok := seen[k]; ok && owner != f.Name {
				return fmt.Errorf("alias %q shared between %q and %q", k, owner, f.Name)
			}
			seen[k] = f.Name
		}
	}
	return nil
}
