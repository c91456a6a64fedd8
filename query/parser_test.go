package query

import (
	"testing"

	"github.com/mtgsearch/mtgsearch/ast"
	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegistry(t *testing.T) *fields.Registry {
	t.Helper()
	reg, err := fields.NewDefaultRegistry()
	require.NoError(t, err)
	return reg
}

func TestParseSimpleFieldPredConjunction(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := Parse("t:creature c:r cmc<=3", reg)
	require.NoError(t, err)
	require.False(t, dirs.HasOrder)

	and, ok := expr.(*ast.And)
	require.True(t, ok)
	require.Len(t, and.Xs, 3)

	fp0 := and.Xs[0].(*ast.FieldPredicate)
	assert.Equal(t, "type", fp0.Field.Name)
	assert.Equal(t, fields.OpColon, fp0.Op)

	fp2 := and.Xs[2].(*ast.FieldPredicate)
	assert.Equal(t, "cmc", fp2.Field.Name)
	assert.Equal(t, fields.OpLte, fp2.Op)
	assert.InDelta(t, 3.0, fp2.Value.AsFloat(), 0.0001)
}

func TestParseArithPredicateFieldVsField(t *testing.T) {
	reg := mustRegistry(t)
	expr, _, err := Parse("power=toughness", reg)
	require.NoError(t, err)

	ar, ok := expr.(*ast.Arith)
	require.True(t, ok)
	assert.Equal(t, ast.RelEq, ar.Op)
	lhs, ok := ar.LHS.(*ast.FieldRef)
	require.True(t, ok)
	assert.Equal(t, "power", lhs.Field.Name)
	rhs, ok := ar.RHS.(*ast.FieldRef)
	require.True(t, ok)
	assert.Equal(t, "toughness", rhs.Field.Name)
}

func TestParseArithPredicateWithArithmeticOperator(t *testing.T) {
	reg := mustRegistry(t)
	expr, _, err := Parse("cmc+1<power", reg)
	require.NoError(t, err)

	ar, ok := expr.(*ast.Arith)
	require.True(t, ok)
	assert.Equal(t, ast.RelLt, ar.Op)
	term, ok := ar.LHS.(*ast.ArithTerm)
	require.True(t, ok)
	assert.Equal(t, ast.ArithAdd, term.Op)
}

func TestParseArithMixedNumericDomainRejected(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("edhrec+1>cmc", reg)
	require.Error(t, err)
	var vpe *ValueParseError
	require.ErrorAs(t, err, &vpe)
}

func TestParseArithSameDomainWithLiteralAllowed(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("edhrec+1>edhrec", reg)
	require.NoError(t, err)
}

func TestParseSimpleNumericFieldPredNotMisreadAsArith(t *testing.T) {
	reg := mustRegistry(t)
	expr, _, err := Parse("cmc<=3", reg)
	require.NoError(t, err)

	fp, ok := expr.(*ast.FieldPredicate)
	require.True(t, ok)
	assert.Equal(t, "cmc", fp.Field.Name)
	assert.Equal(t, fields.OpLte, fp.Op)
}

func TestParseNegationAndGrouping(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := Parse("-is:dfc (set:ktk or set:bfz) order:released direction:asc unique:prints", reg)
	require.NoError(t, err)

	and, ok := expr.(*ast.And)
	require.True(t, ok)
	require.Len(t, and.Xs, 2)

	not, ok := and.Xs[0].(*ast.Not)
	require.True(t, ok)
	fp, ok := not.X.(*ast.FieldPredicate)
	require.True(t, ok)
	assert.Equal(t, "is", fp.Field.Name)

	or, ok := and.Xs[1].(*ast.Or)
	require.True(t, ok)
	require.Len(t, or.Xs, 2)

	assert.True(t, dirs.HasOrder)
	assert.Equal(t, "released", dirs.Order)
	assert.Equal(t, "asc", dirs.Direction)
	assert.Equal(t, "prints", dirs.Unique)
}

func TestParseBarewordFallback(t *testing.T) {
	reg := mustRegistry(t)
	expr, _, err := Parse("lightning bolt", reg)
	require.NoError(t, err)

	and, ok := expr.(*ast.And)
	require.True(t, ok)
	require.Len(t, and.Xs, 2)
	bw0 := and.Xs[0].(*ast.Bareword)
	assert.Equal(t, "lightning", bw0.Text)
	bw1 := and.Xs[1].(*ast.Bareword)
	assert.Equal(t, "bolt", bw1.Text)
}

func TestParseUnknownFieldError(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("notafield:foo", reg)
	require.Error(t, err)
	var ufe *UnknownFieldError
	require.ErrorAs(t, err, &ufe)
}

func TestParseOperatorNotAllowedError(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("oracle=foo", reg)
	require.Error(t, err)
	var oe *OperatorNotAllowedError
	require.ErrorAs(t, err, &oe)
}

func TestParseValueParseError(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("cmc<=notanumber", reg)
	require.Error(t, err)
	var vpe *ValueParseError
	require.ErrorAs(t, err, &vpe)
}

func TestParseOrderPreferContradictionRejected(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("t:creature order:prefer prefer:newest", reg)
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestParseUnbalancedParens(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := Parse("(t:creature", reg)
	require.Error(t, err)
}
