package fields

import (
	"fmt"
	"sort"
	"strings"
)

// ColorSet is a multiset over {W,U,B,R,G} plus the synthetic Colorless
// marker, stored as a bitmask so subset/superset comparisons (spec.md
// §4.3's color relop lowering) are cheap set operations.
type ColorSet uint8

const (
	White ColorSet = 1 << iota
	Blue
	Black
	Red
	Green
	colorBitCount = 5
)

var colorLetters = [colorBitCount]struct {
	bit    ColorSet
	letter byte
}{
	{White, 'W'},
	{Blue, 'U'},
	{Black, 'B'},
	{Red, 'R'},
	{Green, 'G'},
}

// namedColorSets maps Scryfall's named color combinations (plus the
// colorless and multicolor keywords) to their ColorSet.
var namedColorSets = map[string]ColorSet{
	"colorless":  0,
	"c":          0,
	"white":      White,
	"blue":       Blue,
	"black":      Black,
	"red":        Red,
	"green":      Green,
	"azorius":    White | Blue,
	"dimir":      Blue | Black,
	"rakdos":     Black | Red,
	"gruul":      Red | Green,
	"selesnya":   Green | White,
	"orzhov":     White | Black,
	"izzet":      Blue | Red,
	"golgari":    Black | Green,
	"boros":      Red | White,
	"simic":      Green | Blue,
	"jeskai":     White | Blue | Red,
	"sultai":     Blue | Black | Green,
	"mardu":      Black | Red | White,
	"temur":      Red | Green | Blue,
	"abzan":      Green | White | Black,
	"bant":       Green | White | Blue,
	"esper":      White | Blue | Black,
	"grixis":     Blue | Black | Red,
	"jund":       Black | Red | Green,
	"naya":       Red | Green | White,
	"mono-white": White,
	"mono-blue":  Blue,
	"mono-black": Black,
	"mono-red":   Red,
	"mono-green": Green,
	"wubrg":      White | Blue | Black | Red | Green,
	"multicolor": multicolorSentinel,
}

// multicolorSentinel flags the "multicolor" keyword: "two or more colors
// present", a cardinality test rather than a literal color combination.
// It lives outside the W/U/B/R/G bit range so it never aliases a real
// ColorSet value; compiler.lowerContains checks for it explicitly.
const multicolorSentinel ColorSet = 1 << 7

// IsMulticolorQuery reports whether cs is the multicolor keyword's
// sentinel value rather than an actual set of colors.
func (cs ColorSet) IsMulticolorQuery() bool { return cs == multicolorSentinel }

// ParseColorExpr parses a Scryfall-style color value: letter combinations
// (e.g. "wu", "UR"), a named guild/shard/alias, or the multicolor/colorless
// sentinels. Unrecognized text is a ValueParseError (caller wraps it).
func ParseColorExpr(text string) (ColorSet, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, fmt.Errorf("empty color expression")
	}
	if set, ok := namedColorSets[lower]; ok {
		return set, nil
	}

	var set ColorSet
	for _, r := range strings.ToUpper(text) {
		matched := false
		for _, cl := range colorLetters {
			if byte(r) == cl.letter {
				set |= cl.bit
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if r == 'C' {
			continue // explicit colorless marker contributes no bits
		}
		return 0, fmt.Errorf("unrecognized color letter %q", r)
	}
	return set, nil
}

// Canonical renders the set as a stable sorted letter string (WUBRG order),
// used both as the compiled SQL parameter and as the normalization target
// for equality comparisons.
func (cs ColorSet) Canonical() string {
	var b strings.Builder
	for _, cl := range colorLetters {
		if cs&cl.bit != 0 {
			b.WriteByte(cl.letter)
		}
	}
	if b.Len() == 0 {
		return "C"
	}
	return b.String()
}

func (cs ColorSet) Count() int {
	n := 0
	for _, cl := range colorLetters {
		if cs&cl.bit != 0 {
			n++
		}
	}
	return n
}

func (cs ColorSet) IsSubsetOf(other ColorSet) bool { return cs&^other == 0 }
func (cs ColorSet) IsSupersetOf(other ColorSet) bool { return other&^cs == 0 }
func (cs ColorSet) Equals(other ColorSet) bool       { return cs == other }

// Letters returns the individual color letters present, alphabetically
// sorted (B,G,R,U,W). The order doesn't matter to callers: it is only
// ever used to build a jsonb "?&" containment array, which is
// order-insensitive.
func (cs ColorSet) Letters() []string {
	out := make([]string, 0, colorBitCount)
	for _, cl := range colorLetters {
		if cs&cl.bit != 0 {
			out = append(out, string(cl.letter))
		}
	}
	sort.Strings(out)
	return out
}
