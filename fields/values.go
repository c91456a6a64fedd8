package fields

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueParser turns the raw token text the grammar extracted for a
// field_pred's value into a normalized Value. Returning an error here is
// always a ValueParseError at the call site (query/errors.go).
type ValueParser func(text string) (Value, error)

// ParseText is the identity parser for free text fields (card name, oracle
// text, flavor text, artist). Wildcard "*" is left untouched; the compiler
// maps it to SQL "%" only for Pattern-strategy fields.
func ParseText(text string) (Value, error) {
	return StringValue(text), nil
}

// ParseInteger parses a signed integer, surfacing range errors per spec.md
// §4.2's Integer value parser.
func ParseInteger(text string) (Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid integer %q: %w", text, err)
	}
	return IntValue(n), nil
}

// ParseFloat parses a decimal number, used by numeric fields that are not
// integral (price fields).
func ParseFloat(text string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return FloatValue(f), nil
}

// ParseColor wraps ParseColorExpr as a ValueParser.
func ParseColor(text string) (Value, error) {
	cs, err := ParseColorExpr(text)
	if err != nil {
		return Value{}, err
	}
	return ColorSetValue(cs), nil
}

// ParseManaCost wraps ParseManaCostExpr as a ValueParser.
func ParseManaCost(text string) (Value, error) {
	pips, err := ParseManaCostExpr(text)
	if err != nil {
		return Value{}, err
	}
	return StringArray(pips), nil
}

// Rarity is ordered common < uncommon < rare < mythic, with special/bonus
// treated as outside the normal progression (spec.md §4.2).
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityMythic
	RaritySpecial
	RarityBonus
)

var rarityNames = map[string]Rarity{
	"common":    RarityCommon,
	"uncommon":  RarityUncommon,
	"rare":      RarityRare,
	"mythic":    RarityMythic,
	"special":   RaritySpecial,
	"bonus":     RarityBonus,
}

var rarityOrder = []string{"common", "uncommon", "rare", "mythic", "special", "bonus"}

func (r Rarity) String() string {
	if int(r) < 0 || int(r) >= len(rarityOrder) {
		return "unknown"
	}
	return rarityOrder[r]
}

// ParseRarity parses one of the enumerated rarity names, case-insensitive.
func ParseRarity(text string) (Value, error) {
	name := strings.ToLower(strings.TrimSpace(text))
	if _, ok := rarityNames[name]; !ok {
		return Value{}, fmt.Errorf("unrecognized rarity %q", text)
	}
	return StringValue(name), nil
}

// ParseDate accepts "YYYY-MM-DD" or a partial "YYYY" / "YYYY-MM" prefix,
// normalizing to a full date for "YYYY" and "YYYY-MM" by anchoring to the
// first day, matching how printed-date range queries typically behave.
func ParseDate(text string) (Value, error) {
	text = strings.TrimSpace(text)
	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return StringValue(t.Format("2006-01-02")), nil
		}
	}
	return Value{}, fmt.Errorf("invalid date %q", text)
}

// ParseBool accepts the usual truthy/falsy spellings used by `is:`/`not:`
// style boolean fields.
func ParseBool(text string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "y", "1":
		return BoolValue(true), nil
	case "false", "no", "n", "0":
		return BoolValue(false), nil
	default:
		// Bareword booleans (is:commander) carry the vocabulary word itself;
		// truthiness is resolved by the field's Bool vocabulary, not here.
		return StringValue(strings.ToLower(text)), nil
	}
}

// ParseEnumerated builds a ValueParser over a fixed, case-insensitive
// vocabulary (Keyword, Tag, Layout, Border and the legal/banned/restricted
// fields all reduce to this). An empty vocabulary accepts any text (used
// for open-ended vocabularies like the format key of legal:standard).
func ParseEnumerated(vocabulary []string) ValueParser {
	allowed := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		allowed[strings.ToLower(v)] = true
	}
	return func(text string) (Value, error) {
		lower := strings.ToLower(strings.TrimSpace(text))
		if len(allowed) > 0 && !allowed[lower] {
			return Value{}, fmt.Errorf("unrecognized value %q", text)
		}
		return StringValue(lower), nil
	}
}

// ParseSetCode is an open vocabulary (new sets release constantly); only
// basic shape validation applies.
func ParseSetCode(text string) (Value, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Value{}, fmt.Errorf("empty set code")
	}
	return StringValue(lower), nil
}

var legalityStates = []string{"legal", "not_legal", "restricted", "banned"}

// ParseLegality parses one of the legality state words (legal, not_legal,
// restricted, banned), case-insensitively.
func ParseLegality(text string) (Value, error) {
	return ParseEnumerated(legalityStates)(text)
}
