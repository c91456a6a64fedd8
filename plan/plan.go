// Package plan declares the output of the compiler: a dialect-agnostic
// description of a compiled query ready for a store.Backend to render
// into a concrete SQL statement (spec.md §3.1, §6.2).
package plan

import "github.com/mtgsearch/mtgsearch/fields"

// Param is one named placeholder in PredicateSQL, in the left-to-right
// order the compiler assigned it (spec.md §4.3: "Parameters are named
// :p0, :p1, … in left-to-right order; a stable counter lives in the
// compile context").
type Param struct {
	Name  string // ":p0", ":p1", …
	Value fields.Value
}

// OrderTerm is one ORDER BY clause term.
type OrderTerm struct {
	Column    string
	Direction string // "asc" | "desc"
	NullsLast bool
}

// Plan is a fully compiled, backend-agnostic query plan. PredicateSQL
// uses the compiler's generic ":pN" placeholder syntax; a store.Backend
// substitutes its own dialect's placeholder syntax at execution time.
type Plan struct {
	PredicateSQL string
	Parameters   []Param
	OrderBy      []OrderTerm
	UniqueMode   string // "cards" | "art" | "prints"
	Limit        int
}

// ParamMap returns Parameters as a name-keyed map, for callers (tests,
// store adapters) that want lookup rather than positional access.
func (p *Plan) ParamMap() map[string]fields.Value {
	m := make(map[string]fields.Value, len(p.Parameters))
	for _, prm := range p.Parameters {
		m[prm.Name] = prm.Value
	}
	return m
}
