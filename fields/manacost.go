package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var manaSymbolRE = regexp.MustCompile(`\{([^{}]+)\}|([WUBRGCXwubrgcx])|([0-9]+)`)

// ParseManaCostExpr parses a Scryfall mana-cost expression such as
// "{2}{W}{W}" or the bare shorthand "2ww" into a sorted multiset of pip
// symbols. The result is exposed as a StringArray Value (spec.md §3.1's
// ManaCost value parser "yields a color/pip multiset").
func ParseManaCostExpr(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty mana cost expression")
	}

	var pips []string
	matches := manaSymbolRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("unrecognized mana cost expression %q", text)
	}
	consumed := 0
	for _, m := range matches {
		consumed += len(m[0])
		switch {
		case m[1] != "":
			pips = append(pips, normalizeManaSymbol(m[1])...)
		case m[2] != "":
			pips = append(pips, strings.ToUpper(m[2]))
		case m[3] != "":
			n, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, fmt.Errorf("invalid generic mana count %q: %w", m[3], err)
			}
			for i := 0; i < n; i++ {
				pips = append(pips, "1")
			}
		}
	}
	if consumed != len(text) {
		return nil, fmt.Errorf("unrecognized characters in mana cost expression %q", text)
	}
	sort.Strings(pips)
	return pips, nil
}

func normalizeManaSymbol(sym string) []string {
	sym = strings.ToUpper(sym)
	if n, err := strconv.Atoi(sym); err == nil {
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, "1")
		}
		return out
	}
	return []string{sym}
}

// ManaCostCMC computes the converted mana cost of a parsed pip multiset:
// hybrid and Phyrexian symbols count as 1, generic pips ("1") sum directly.
func ManaCostCMC(pips []string) float64 {
	var total float64
	for _, p := range pips {
		if n, err := strconv.Atoi(p); err == nil {
			total += float64(n)
			continue
		}
		total++
	}
	return total
}
