package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mtgsearch/mtgsearch/ast"
)

// Fingerprint produces a stable textual normalization of a parsed query,
// used as the cache key for "the handler fingerprints the query text; if
// the cache holds a plan for that fingerprint, it is reused" (spec.md
// §2). Two queries that differ only in whitespace, operand order inside
// a commutative And/Or, or literal token spelling of an equivalent
// parsed value collapse to the same Fingerprint; this is deliberately
// coarser than parser-level equality so the cache can be reused across
// cosmetic rewrites of the same query.
func Fingerprint(expr ast.Expr, dirs Directives) string {
	var b strings.Builder
	writeExpr(&b, expr)
	b.WriteString("|order=")
	b.WriteString(dirs.Order)
	b.WriteString(";dir=")
	b.WriteString(dirs.Direction)
	b.WriteString(";prefer=")
	b.WriteString(dirs.Prefer)
	b.WriteString(";unique=")
	b.WriteString(dirs.Unique)
	b.WriteString(";limit=")
	b.WriteString(strconv.Itoa(dirs.Limit))
	return b.String()
}

func writeExpr(b *strings.Builder, e ast.Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch v := e.(type) {
	case *ast.FieldPredicate:
		b.WriteString(v.Field.Name)
		b.WriteString(string(v.Op))
		b.WriteString(v.Value.String())
	case *ast.Bareword:
		b.WriteString("~")
		b.WriteString(strings.ToLower(v.Text))
	case *ast.Not:
		b.WriteString("NOT(")
		writeExpr(b, v.X)
		b.WriteString(")")
	case *ast.And:
		writeCommutative(b, "AND", v.Xs)
	case *ast.Or:
		writeCommutative(b, "OR", v.Xs)
	case *ast.Arith:
		b.WriteString("ARITH(")
		writeTerm(b, v.LHS)
		b.WriteString(string(v.Op))
		writeTerm(b, v.RHS)
		b.WriteString(")")
	}
}

// writeCommutative sorts child fragments before joining them so that
// reordered And/Or operands fingerprint identically (they are
// semantically commutative; spec.md §8 property 2 requires the compiled
// predicate_sql to be renaming-equivalent regardless of surface order).
func writeCommutative(b *strings.Builder, op string, xs []ast.Expr) {
	parts := make([]string, len(xs))
	for i, x := range xs {
		var sub strings.Builder
		writeExpr(&sub, x)
		parts[i] = sub.String()
	}
	sort.Strings(parts)
	b.WriteString(op)
	b.WriteString("(")
	b.WriteString(strings.Join(parts, ","))
	b.WriteString(")")
}

func writeTerm(b *strings.Builder, t ast.Term) {
	switch v := t.(type) {
	case *ast.FieldRef:
		b.WriteString(v.Field.Name)
	case *ast.NumberLit:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *ast.ArithTerm:
		b.WriteString("(")
		writeTerm(b, v.LHS)
		b.WriteString(string(v.Op))
		writeTerm(b, v.RHS)
		b.WriteString(")")
	}
}
