package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeSimpleFieldPred(t *testing.T) {
	toks, err := Tokenize("t:creature cmc<=3")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindWord, KindColon, KindWord, KindWord, KindLte, KindNumber, KindEOF}, kinds(toks))
}

func TestTokenizeQuotedStringWithEscapes(t *testing.T) {
	toks, err := Tokenize(`o:"draw a card, then \"discard\""`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, `draw a card, then "discard"`, toks[2].Text)
}

func TestTokenizeHyphenatedWordStaysJoined(t *testing.T) {
	toks, err := Tokenize("c:mono-red")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindWord, KindColon, KindWord, KindEOF}, kinds(toks))
	assert.Equal(t, "mono-red", toks[2].Text)
}

func TestTokenizeLeadingDashIsNot(t *testing.T) {
	toks, err := Tokenize("-is:dfc")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindNot, KindWord, KindColon, KindWord, KindEOF}, kinds(toks))
}

func TestTokenizeArithmeticOperatorsAreDistinctTokens(t *testing.T) {
	toks, err := Tokenize("cmc+1<power")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindWord, KindPlus, KindNumber, KindLt, KindWord, KindEOF}, kinds(toks))
}

func TestTokenizeReservedWordsCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("t:creature AND c:r OR Not t:land")
	require.NoError(t, err)
	assert.Equal(t, []Kind{
		KindWord, KindColon, KindWord,
		KindAnd,
		KindWord, KindColon, KindWord,
		KindOr,
		KindNot,
		KindWord, KindColon, KindWord,
		KindEOF,
	}, kinds(toks))
}

func TestTokenizeReservedWordNotConfusedWithPrefix(t *testing.T) {
	toks, err := Tokenize("t:android")
	require.NoError(t, err)
	assert.Equal(t, KindWord, toks[2].Kind)
	assert.Equal(t, "android", toks[2].Text)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`o:"draw a card`)
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestTokenizeWildcard(t *testing.T) {
	toks, err := Tokenize("name:dragon*")
	require.NoError(t, err)
	assert.Equal(t, "dragon*", toks[2].Text)
}

func TestTokenizeParensAndGrouping(t *testing.T) {
	toks, err := Tokenize("(set:ktk or set:bfz)")
	require.NoError(t, err)
	assert.Equal(t, KindLParen, toks[0].Kind)
	assert.Equal(t, KindRParen, toks[len(toks)-2].Kind)
}
