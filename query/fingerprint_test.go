package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintStableAcrossWhitespace(t *testing.T) {
	reg := mustRegistry(t)
	e1, d1, err := Parse("t:creature   c:r", reg)
	require.NoError(t, err)
	e2, d2, err := Parse("t:creature c:r", reg)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(e1, d1), Fingerprint(e2, d2))
}

func TestFingerprintStableAcrossCommutativeReorder(t *testing.T) {
	reg := mustRegistry(t)
	e1, d1, err := Parse("t:creature c:r", reg)
	require.NoError(t, err)
	e2, d2, err := Parse("c:r t:creature", reg)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(e1, d1), Fingerprint(e2, d2))
}

func TestFingerprintDiffersOnDirectives(t *testing.T) {
	reg := mustRegistry(t)
	e1, d1, err := Parse("t:creature order:cmc", reg)
	require.NoError(t, err)
	e2, d2, err := Parse("t:creature order:name", reg)
	require.NoError(t, err)
	assert.NotEqual(t, Fingerprint(e1, d1), Fingerprint(e2, d2))
}
