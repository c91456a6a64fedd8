package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryInjective(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)
	assert.NoError(t, ValidateRegistry(reg))
}

func TestRegistryRejectsAliasCollision(t *testing.T) {
	a := &Field{Name: "type", Aliases: []string{"t"}, Storage: Text, Parse: ParseText}
	b := &Field{Name: "tag", Aliases: []string{"t"}, Storage: Text, Parse: ParseText}
	_, err := NewRegistry([]*Field{a, b})
	assert.Error(t, err)
}

func TestLookupByAlias(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	f, ok := reg.Lookup("t")
	require.True(t, ok)
	assert.Equal(t, "type", f.Name)

	_, ok = reg.Lookup("nonexistent_field")
	assert.False(t, ok)
}

func TestColorExprParsing(t *testing.T) {
	cases := []struct {
		text string
		want ColorSet
	}{
		{"wu", White | Blue},
		{"azorius", White | Blue},
		{"mono-red", Red},
		{"colorless", 0},
		{"c", 0},
	}
	for _, tc := range cases {
		got, err := ParseColorExpr(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestManaCostExprParsing(t *testing.T) {
	pips, err := ParseManaCostExpr("{2}{W}{W}")
	require.NoError(t, err)
	assert.Equal(t, float64(4), ManaCostCMC(pips))
}
