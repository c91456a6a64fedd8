package compiler

import (
	"testing"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegistry(t *testing.T) *fields.Registry {
	t.Helper()
	reg, err := fields.NewDefaultRegistry()
	require.NoError(t, err)
	return reg
}

func TestCompileS1ConjunctionWithNumericPredicate(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:creature c:r cmc<=3", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	assert.Equal(t, "(types ? :p0 AND colors ? :p1 AND cmc <= :p2)", p.PredicateSQL)
	require.Len(t, p.Parameters, 3)
	assert.Equal(t, "creature", p.Parameters[0].Value.Str)
	assert.Equal(t, "R", p.Parameters[1].Value.Str)
	assert.InDelta(t, 3.0, p.Parameters[2].Value.AsFloat(), 0.0001)

	require.Len(t, p.OrderBy, 1)
	assert.Equal(t, "edhrec_rank", p.OrderBy[0].Column)
	assert.Equal(t, "asc", p.OrderBy[0].Direction)
	assert.True(t, p.OrderBy[0].NullsLast)
	assert.Equal(t, 100, p.Limit)
}

func TestCompileS2QuotedNamePattern(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse(`name:"Lightning Bolt"`, reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	assert.Equal(t, "LOWER(card_name) LIKE LOWER(:p0)", p.PredicateSQL)
	require.Len(t, p.Parameters, 1)
	assert.Equal(t, "%lightning bolt%", p.Parameters[0].Value.Str)
}

func TestCompileS3ArithFieldEqualsField(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("power=toughness", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	assert.Equal(t,
		"creature_power IS NOT NULL AND creature_toughness IS NOT NULL AND creature_power = creature_toughness",
		p.PredicateSQL)
}

func TestCompileS4NegationGroupingAndDirectives(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse(
		"-is:dfc (set:ktk or set:bfz) order:released direction:asc unique:prints", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	assert.Equal(t, `(NOT(is_tags ? :p0) AND (set_code = :p1 OR set_code = :p2))`, p.PredicateSQL)
	assert.Equal(t, "prints", p.UniqueMode)
	require.Len(t, p.OrderBy, 2)
	assert.Equal(t, "released_at", p.OrderBy[0].Column)
	assert.Equal(t, "asc", p.OrderBy[0].Direction)
	assert.Equal(t, "edhrec_rank", p.OrderBy[1].Column)
}

func TestCompileNotEqualsIsNegatedEquals(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("rarity!=mythic", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "NOT(rarity = :p0)", p.PredicateSQL)
}

func TestCompileDeMorganOverAnd(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("-(t:creature c:r)", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "(NOT(types ? :p0) OR NOT(colors ? :p1))", p.PredicateSQL)
}

func TestCompileDoubleNegationEliminated(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("-(-t:creature)", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "types ? :p0", p.PredicateSQL)
}

func TestCompileParenFlatteningSameKind(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("(t:creature c:r) cmc<=3", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "(types ? :p0 AND colors ? :p1 AND cmc <= :p2)", p.PredicateSQL)
}

func TestCompileBarewordIsNamePattern(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("dragon", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "LOWER(card_name) LIKE LOWER(:p0)", p.PredicateSQL)
	assert.Equal(t, "%dragon%", p.Parameters[0].Value.Str)
}

func TestCompileMulticolorIsCardinalityNotFiveColorMatch(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("c:multicolor", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, "jsonb_array_length(colors) >= 2", p.PredicateSQL)
	assert.Empty(t, p.Parameters)
}

func TestCompileOrderPreferContradictionCaughtUpstream(t *testing.T) {
	reg := mustRegistry(t)
	_, _, err := query.Parse("t:creature order:prefer prefer:newest", reg)
	require.Error(t, err)
}

func TestCompilePreferNewestRewritesSecondaryOrder(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:creature order:cmc prefer:newest", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	require.Len(t, p.OrderBy, 2)
	assert.Equal(t, "cmc", p.OrderBy[0].Column)
	assert.Equal(t, "released_at", p.OrderBy[1].Column)
	assert.Equal(t, "desc", p.OrderBy[1].Direction)
}

func TestCompilePreferOldestRewritesSecondaryOrder(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:creature order:cmc prefer:oldest", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	require.Len(t, p.OrderBy, 2)
	assert.Equal(t, "released_at", p.OrderBy[1].Column)
	assert.Equal(t, "asc", p.OrderBy[1].Direction)
}

func TestCompileNoPreferKeepsEdhrecSecondaryOrder(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:creature order:cmc", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)

	require.Len(t, p.OrderBy, 2)
	assert.Equal(t, "edhrec_rank", p.OrderBy[1].Column)
	assert.Equal(t, "asc", p.OrderBy[1].Direction)
}

func TestCompileDefaultOrderingAndLimit(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:land", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, "cards", p.UniqueMode)
	require.Len(t, p.OrderBy, 1)
	assert.Equal(t, "edhrec_rank", p.OrderBy[0].Column)
}

func TestCompileExplicitLimitIsCapped(t *testing.T) {
	reg := mustRegistry(t)
	expr, dirs, err := query.Parse("t:land limit:99999", reg)
	require.NoError(t, err)
	p, err := Compile(expr, dirs, reg)
	require.NoError(t, err)
	assert.Equal(t, query.MaxLimit, p.Limit)
}
