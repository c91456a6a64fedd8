package compiler

import "github.com/mtgsearch/mtgsearch/ast"

// normalize pushes Not down to the leaves via De Morgan's laws and
// collapses double negation, so the lowering pass below only ever sees a
// Not directly wrapping a FieldPredicate, Bareword, or Arith (spec.md
// §4.3: "Not: apply to leaf comparisons; distribute over And/Or; Not Not
// X → X").
func normalize(e ast.Expr, negate bool) ast.Expr {
	switch v := e.(type) {
	case *ast.Not:
		return normalize(v.X, !negate)
	case *ast.And:
		xs := make([]ast.Expr, len(v.Xs))
		for i, c := range v.Xs {
			xs[i] = normalize(c, negate)
		}
		if negate {
			return &ast.Or{Xs: xs}
		}
		return &ast.And{Xs: xs}
	case *ast.Or:
		xs := make([]ast.Expr, len(v.Xs))
		for i, c := range v.Xs {
			xs[i] = normalize(c, negate)
		}
		if negate {
			return &ast.And{Xs: xs}
		}
		return &ast.Or{Xs: xs}
	case *ast.FieldPredicate, *ast.Bareword, *ast.Arith:
		if negate {
			return &ast.Not{X: v}
		}
		return v
	default:
		return e
	}
}

// flatten merges nested And-of-And and Or-of-Or structures produced by
// parenthesized grouping (e.g. "(a and b) and c") into a single level
// (spec.md §4.3: "short-circuit-equivalent flattening of nested Ands and
// Ors of the same kind"). Must run after normalize, since normalize can
// itself introduce fresh And/Or nodes via De Morgan distribution.
func flatten(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.And:
		var xs []ast.Expr
		for _, c := range v.Xs {
			fc := flatten(c)
			if inner, ok := fc.(*ast.And); ok {
				xs = append(xs, inner.Xs...)
			} else {
				xs = append(xs, fc)
			}
		}
		return &ast.And{Xs: xs}
	case *ast.Or:
		var xs []ast.Expr
		for _, c := range v.Xs {
			fc := flatten(c)
			if inner, ok := fc.(*ast.Or); ok {
				xs = append(xs, inner.Xs...)
			} else {
				xs = append(xs, fc)
			}
		}
		return &ast.Or{Xs: xs}
	case *ast.Not:
		return &ast.Not{X: flatten(v.X)}
	default:
		return e
	}
}
