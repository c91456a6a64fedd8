// Package ast declares the typed AST the grammar builder produces
// (spec.md §3.1). Expr is a tagged sum type, not a class hierarchy: each
// variant is a distinct Go type, and the compiler dispatches on them with
// a type switch rather than virtual methods (spec.md §9's "no dynamic
// dispatch beyond the field registry's value parser and operator
// strategy").
package ast

import "github.com/mtgsearch/mtgsearch/fields"

// Expr is implemented by every AST node the grammar can produce.
type Expr interface {
	exprNode()
}

// Atom is a leaf query node (spec.md §3.1): either a resolved
// FieldPredicate or an implicit-name-match Bareword.
type Atom interface {
	Expr
	atomNode()
}

// FieldPredicate is `field op value`, already resolved against a
// fields.Registry: Field is non-nil, Op is one of the field's AllowedOps,
// and Value was produced by the field's own ValueParser.
type FieldPredicate struct {
	Field     *fields.Field
	Op        fields.Operator
	Value     fields.Value
	ValueText string // original token text, for error messages
}

func (*FieldPredicate) exprNode() {}
func (*FieldPredicate) atomNode() {}

// Bareword is a query token without a field prefix; per spec.md §4.3 it is
// compiled as `name Pattern ':' value`.
type Bareword struct {
	Text string
}

func (*Bareword) exprNode() {}
func (*Bareword) atomNode() {}

// Not negates a single child expression.
type Not struct {
	X Expr
}

func (*Not) exprNode() {}

// And is implicit-conjunction or explicit `and`-joined children.
type And struct {
	Xs []Expr
}

func (*And) exprNode() {}

// Or is `or`-joined children.
type Or struct {
	Xs []Expr
}

func (*Or) exprNode() {}

// RelOp is the comparison operator of an Arith predicate.
type RelOp string

const (
	RelEq  RelOp = "="
	RelNeq RelOp = "!="
	RelLt  RelOp = "<"
	RelLte RelOp = "<="
	RelGt  RelOp = ">"
	RelGte RelOp = ">="
)

// Term is one side of an Arith expression: a field reference, a numeric
// literal, or a nested arithmetic sub-expression (spec.md §3.1).
type Term interface {
	termNode()
}

// FieldRef is a Term referencing a numeric-typed field's column.
type FieldRef struct {
	Field *fields.Field
}

func (*FieldRef) termNode() {}

// NumberLit is a literal numeric Term.
type NumberLit struct {
	Value float64
}

func (*NumberLit) termNode() {}

// ArithOp is one of the four arithmetic operators allowed inside a Term.
type ArithOp string

const (
	ArithAdd ArithOp = "+"
	ArithSub ArithOp = "-"
	ArithMul ArithOp = "*"
	ArithDiv ArithOp = "/"
)

// ArithTerm is a nested `(Term (+|-|*|/) Term)` sub-expression.
type ArithTerm struct {
	LHS Term
	Op  ArithOp
	RHS Term
}

func (*ArithTerm) termNode() {}

// Arith is a top-level arithmetic predicate: `arith_term relop arith_term`,
// where at least one side must reference a field (spec.md §4.2 grammar).
type Arith struct {
	LHS Term
	Op  RelOp
	RHS Term
}

func (*Arith) exprNode() {}
