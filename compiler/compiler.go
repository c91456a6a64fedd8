// Package compiler lowers a query/ast.Expr plus query.Directives into a
// plan.Plan: a dialect-agnostic predicate SQL fragment, numbered
// parameters, ordering, uniqueness mode, and limit (spec.md §4.3).
// Lowering dispatches on the AST's tagged-sum variants with a type
// switch, mirroring ast.go's explicit avoidance of virtual dispatch.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mtgsearch/mtgsearch/ast"
	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
	"github.com/mtgsearch/mtgsearch/query"
)

// ctx carries the compiler's parameter counter (spec.md §4.3: "a stable
// counter lives in the compile context").
type ctx struct {
	reg    *fields.Registry
	params []plan.Param
}

func (c *ctx) param(v fields.Value) string {
	name := fmt.Sprintf(":p%d", len(c.params))
	c.params = append(c.params, plan.Param{Name: name, Value: v})
	return name
}

// Compile lowers expr/dirs into a Plan. expr may be nil (a
// directives-only query matches every row).
func Compile(expr ast.Expr, dirs query.Directives, reg *fields.Registry) (*plan.Plan, error) {
	c := &ctx{reg: reg}

	predicateSQL := "TRUE"
	if expr != nil {
		normalized := flatten(normalize(expr, false))
		sql, err := c.lower(normalized)
		if err != nil {
			return nil, err
		}
		predicateSQL = sql
	}

	orderBy, uniqueMode, err := buildOrdering(dirs)
	if err != nil {
		return nil, err
	}

	limit := query.DefaultLimit
	if dirs.HasLimit {
		limit = dirs.Limit
	}

	return &plan.Plan{
		PredicateSQL: predicateSQL,
		Parameters:   c.params,
		OrderBy:      orderBy,
		UniqueMode:   uniqueMode,
		Limit:        limit,
	}, nil
}

func (c *ctx) lower(e ast.Expr) (string, error) {
	switch v := e.(type) {
	case *ast.And:
		return c.lowerJoin(v.Xs, "AND")
	case *ast.Or:
		return c.lowerJoin(v.Xs, "OR")
	case *ast.Not:
		return c.lowerNot(v.X)
	case *ast.FieldPredicate:
		return c.lowerFieldPredicate(v, false)
	case *ast.Bareword:
		return c.lowerBareword(v, false)
	case *ast.Arith:
		return c.lowerArith(v, false)
	default:
		return "", &CompilerInvariantError{Detail: fmt.Sprintf("unhandled AST node %T", e)}
	}
}

func (c *ctx) lowerJoin(xs []ast.Expr, joiner string) (string, error) {
	if len(xs) == 0 {
		return "", &CompilerInvariantError{Detail: "empty And/Or after normalization"}
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		s, err := c.lower(x)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+joiner+" ") + ")", nil
}

// lowerNot handles a Not that, post-normalization, always wraps a leaf
// (FieldPredicate, Bareword, or Arith): spec.md §4.3's "!= is always
// NOT(=)" is implemented by routing the negation directly into the
// field-predicate/bareword lowerer rather than wrapping opaque SQL text,
// so NullSatisfiesNegation fields can special-case the NULL branch.
func (c *ctx) lowerNot(x ast.Expr) (string, error) {
	switch v := x.(type) {
	case *ast.FieldPredicate:
		return c.lowerFieldPredicate(v, true)
	case *ast.Bareword:
		return c.lowerBareword(v, true)
	case *ast.Arith:
		return c.lowerArith(v, true)
	default:
		return "", &CompilerInvariantError{Detail: fmt.Sprintf("Not wrapping non-leaf %T after normalization", x)}
	}
}

func (c *ctx) lowerFieldPredicate(fp *ast.FieldPredicate, negate bool) (string, error) {
	op := fp.Op
	if op == fields.OpNeq {
		op = fields.OpEq
		negate = !negate
	}
	base, err := c.lowerFieldOp(fp.Field, op, fp.Value)
	if err != nil {
		return "", err
	}
	if !negate {
		return base, nil
	}
	if fp.Field.NullSatisfiesNegation {
		return fmt.Sprintf("(%s IS NULL OR NOT(%s))", fp.Field.Column, base), nil
	}
	return "NOT(" + base + ")", nil
}

// lowerFieldOp implements spec.md §4.3's storage_kind/colon_strategy
// dispatch table. op is never OpNeq here (lowerFieldPredicate already
// rewrote != into a negated =).
func (c *ctx) lowerFieldOp(f *fields.Field, op fields.Operator, v fields.Value) (string, error) {
	col := f.Column
	switch {
	case f.Storage == fields.Text && op == fields.OpColon && f.ColonStrategy == fields.Pattern:
		return c.lowerPattern(col, v.Str), nil

	case f.Storage == fields.Text:
		if op == fields.OpColon {
			// Exact colon strategy: ':' is identical to '='.
			op = fields.OpEq
		}
		p := c.param(v)
		return fmt.Sprintf("%s %s %s", col, op, p), nil

	case f.Storage == fields.Numeric:
		p := c.param(v)
		return fmt.Sprintf("%s %s %s", col, op, p), nil

	case f.Storage == fields.Set && op == fields.OpColon && f.ColonStrategy == fields.Contains:
		return c.lowerContains(col, v), nil

	case f.Storage == fields.Set && op == fields.OpEq:
		p := c.param(v)
		return fmt.Sprintf("%s = %s", col, p), nil

	case f.Storage == fields.Set && f.ColonStrategy == fields.Subset:
		return c.lowerSetSubset(col, op, v), nil

	case f.Storage == fields.Map:
		return c.lowerLegality(f, v), nil

	case f.Storage == fields.Bool && op == fields.OpColon:
		p := c.param(v)
		return fmt.Sprintf("%s ? %s", col, p), nil

	default:
		return "", &CompilerInvariantError{Detail: fmt.Sprintf("no lowering rule for field %s storage=%v op=%s", f.Name, f.Storage, op)}
	}
}

// lowerContains implements Set+':'+Contains membership (spec.md §4.3).
// A ColorSet value (color: field) decomposes into its letters: a single
// letter is a plain `?` membership test, several letters require `?&`
// (contains-all, matching Postgres's jsonb/array "all keys present"
// operator), and the empty set (colorless) compiles to an explicit
// empty-array comparison rather than a containment test.
func (c *ctx) lowerContains(col string, v fields.Value) string {
	if v.Kind == fields.KindColorSet {
		if v.Colors.IsMulticolorQuery() {
			return fmt.Sprintf("jsonb_array_length(%s) >= 2", col)
		}
		letters := v.Colors.Letters()
		switch len(letters) {
		case 0:
			return fmt.Sprintf("%s = '{}'", col)
		case 1:
			p := c.param(fields.StringValue(letters[0]))
			return fmt.Sprintf("%s ? %s", col, p)
		default:
			p := c.param(fields.StringArray(letters))
			return fmt.Sprintf("%s ?& %s", col, p)
		}
	}
	p := c.param(v)
	return fmt.Sprintf("%s ? %s", col, p)
}

// lowerPattern implements the Text+Pattern rule, lower-casing the text,
// mapping a user-supplied "*" wildcard to SQL "%" and otherwise wrapping
// the literal in substring-match "%...%" (spec.md §4.3).
func (c *ctx) lowerPattern(col, text string) string {
	text = strings.ToLower(text)
	var pat string
	if strings.Contains(text, "*") {
		pat = strings.ReplaceAll(text, "*", "%")
	} else {
		pat = "%" + text + "%"
	}
	p := c.param(fields.StringValue(pat))
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", col, p)
}

// lowerSetSubset implements color-style subset/superset comparisons
// (spec.md §4.3: "subset comparison using <@/@> plus cardinality for <,
// <=, >, >=").
func (c *ctx) lowerSetSubset(col string, op fields.Operator, v fields.Value) string {
	p := c.param(v)
	switch op {
	case fields.OpColon, fields.OpLte:
		return fmt.Sprintf("%s <@ %s", col, p)
	case fields.OpLt:
		return fmt.Sprintf("(%s <@ %s AND %s <> %s)", col, p, col, p)
	case fields.OpGte:
		return fmt.Sprintf("%s @> %s", col, p)
	case fields.OpGt:
		return fmt.Sprintf("(%s @> %s AND %s <> %s)", col, p, col, p)
	case fields.OpEq:
		return fmt.Sprintf("%s = %s", col, p)
	default:
		return fmt.Sprintf("%s @> %s", col, p)
	}
}

var legalityState = map[string]string{
	"legal":      "legal",
	"banned":     "banned",
	"restricted": "restricted",
}

// lowerLegality implements the Map+':<legality-key>' rule: field name
// (legal/banned/restricted) determines the expected state word, and the
// value is the format key (standard, modern, …).
func (c *ctx) lowerLegality(f *fields.Field, v fields.Value) string {
	state := legalityState[f.Name]
	p := c.param(v)
	return fmt.Sprintf("(%s->>%s) = '%s'", f.Column, p, state)
}

// lowerBareword treats a bare token as `name Pattern ':' value`
// (spec.md §4.3).
func (c *ctx) lowerBareword(bw *ast.Bareword, negate bool) (string, error) {
	nameField, ok := c.reg.Lookup("name")
	if !ok {
		return "", &CompilerInvariantError{Detail: "registry has no 'name' field for bareword lowering"}
	}
	base := c.lowerPattern(nameField.Column, bw.Text)
	if negate {
		return "NOT(" + base + ")", nil
	}
	return base, nil
}

var astOpToSQL = map[ast.RelOp]string{
	ast.RelEq: "=", ast.RelNeq: "!=", ast.RelLt: "<",
	ast.RelLte: "<=", ast.RelGt: ">", ast.RelGte: ">=",
}

var astArithToSQL = map[ast.ArithOp]string{
	ast.ArithAdd: "+", ast.ArithSub: "-", ast.ArithMul: "*", ast.ArithDiv: "/",
}

// lowerArith compiles an Arith predicate into a numeric SQL comparison,
// explicitly guarded with `col IS NOT NULL` for every referenced field
// (spec.md §4.3's null-propagation policy, spelled out concretely rather
// than relied upon implicitly so the excluded-on-NULL behavior is visible
// in the generated SQL — see spec.md §8 scenario S3). When negate is
// true, the guards still apply unnegated (a NULL operand excludes the
// row whether or not the comparison itself is negated); only the
// comparison is wrapped in NOT(...).
func (c *ctx) lowerArith(a *ast.Arith, negate bool) (string, error) {
	lhs, err := c.lowerTerm(a.LHS)
	if err != nil {
		return "", err
	}
	rhs, err := c.lowerTerm(a.RHS)
	if err != nil {
		return "", err
	}
	op, ok := astOpToSQL[a.Op]
	if !ok {
		return "", &CompilerInvariantError{Detail: fmt.Sprintf("unknown arith relop %v", a.Op)}
	}
	comparison := fmt.Sprintf("%s %s %s", lhs, op, rhs)
	if negate {
		comparison = "NOT(" + comparison + ")"
	}

	var guards []string
	seen := map[string]bool{}
	for _, col := range append(collectFieldColumns(a.LHS), collectFieldColumns(a.RHS)...) {
		if seen[col] {
			continue
		}
		seen[col] = true
		guards = append(guards, col+" IS NOT NULL")
	}
	if len(guards) == 0 {
		return comparison, nil
	}
	return strings.Join(append(guards, comparison), " AND "), nil
}

// collectFieldColumns gathers, in left-to-right order, the backing
// columns of every FieldRef reachable from t.
func collectFieldColumns(t ast.Term) []string {
	switch v := t.(type) {
	case *ast.FieldRef:
		return []string{v.Field.Column}
	case *ast.ArithTerm:
		return append(collectFieldColumns(v.LHS), collectFieldColumns(v.RHS)...)
	default:
		return nil
	}
}

func (c *ctx) lowerTerm(t ast.Term) (string, error) {
	switch v := t.(type) {
	case *ast.FieldRef:
		if v.Field.Storage != fields.Numeric {
			return "", &CompilerInvariantError{Detail: "arithmetic over non-numeric field " + v.Field.Name}
		}
		return v.Field.Column, nil
	case *ast.NumberLit:
		p := c.param(fields.FloatValue(v.Value))
		return p, nil
	case *ast.ArithTerm:
		lhs, err := c.lowerTerm(v.LHS)
		if err != nil {
			return "", err
		}
		rhs, err := c.lowerTerm(v.RHS)
		if err != nil {
			return "", err
		}
		op, ok := astArithToSQL[v.Op]
		if !ok {
			return "", &CompilerInvariantError{Detail: fmt.Sprintf("unknown arith op %v", v.Op)}
		}
		return fmt.Sprintf("(%s %s %s)", lhs, op, rhs), nil
	default:
		return "", &CompilerInvariantError{Detail: fmt.Sprintf("unhandled Term %T", t)}
	}
}
