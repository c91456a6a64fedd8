package ast

import (
	"testing"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/stretchr/testify/assert"
)

func TestExprVariantsSatisfyInterface(t *testing.T) {
	var exprs []Expr = []Expr{
		&FieldPredicate{Field: &fields.Field{Name: "type"}, Op: fields.OpColon, Value: fields.StringValue("creature")},
		&Bareword{Text: "bolt"},
		&Not{X: &Bareword{Text: "bolt"}},
		&And{Xs: []Expr{&Bareword{Text: "a"}, &Bareword{Text: "b"}}},
		&Or{Xs: []Expr{&Bareword{Text: "a"}, &Bareword{Text: "b"}}},
		&Arith{
			LHS: &FieldRef{Field: &fields.Field{Name: "power"}},
			Op:  RelEq,
			RHS: &FieldRef{Field: &fields.Field{Name: "toughness"}},
		},
	}
	assert.Len(t, exprs, 6)
}

func TestAtomInterfaceNarrowing(t *testing.T) {
	var a Atom = &Bareword{Text: "shock"}
	_, ok := a.(*Bareword)
	assert.True(t, ok)
}
