package fields

// NewDefaultRegistry builds the card-schema field table exercised by
// spec.md's worked examples (§6.1, §8 S1-S7). Every field below declares
// its own colon_strategy and allowed_ops as data, per spec.md §9's
// replacement for the source's hard-coded exact-match field list.
func NewDefaultRegistry() (*Registry, error) {
	keywordVocab := []string{
		"flying", "trample", "deathtouch", "haste", "vigilance", "lifelink",
		"first strike", "double strike", "menace", "reach", "flash", "defender",
	}
	layoutVocab := []string{
		"normal", "split", "flip", "transform", "modal_dfc", "meld", "leveler",
		"adventure", "saga", "class", "token", "double_faced_token",
	}
	borderVocab := []string{"black", "white", "silver", "gold", "borderless"}
	tagVocab := []string{"dfc", "commander", "removal", "ramp", "draw"}

	list := []*Field{
		{
			Name:          "name",
			Aliases:       []string{"n"},
			Column:        "card_name",
			Storage:       Text,
			ColonStrategy: Pattern,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "oracle",
			Aliases:       []string{"o", "oracletext", "text"},
			Column:        "oracle_text",
			Storage:       Text,
			ColonStrategy: Pattern,
			AllowedOps:    ops(OpColon, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "flavor",
			Aliases:       []string{"ft"},
			Column:        "flavor_text",
			Storage:       Text,
			ColonStrategy: Pattern,
			AllowedOps:    ops(OpColon, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "artist",
			Aliases:       []string{"a"},
			Column:        "artist_name",
			Storage:       Text,
			ColonStrategy: Pattern,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "type",
			Aliases:       []string{"t"},
			Column:        "types",
			Storage:       Set,
			ColonStrategy: Contains,
			AllowedOps:    ops(OpColon, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "keyword",
			Aliases:       []string{"k", "kw"},
			Column:        "keywords",
			Storage:       Set,
			ColonStrategy: Contains,
			AllowedOps:    ops(OpColon, OpNeq),
			Parse:         ParseEnumerated(keywordVocab),
		},
		{
			Name:          "tag",
			Aliases:       []string{"otag"},
			Column:        "tags",
			Storage:       Set,
			ColonStrategy: Contains,
			AllowedOps:    ops(OpColon, OpNeq),
			Parse:         ParseEnumerated(tagVocab),
		},
		{
			Name:          "color",
			Aliases:       []string{"c"},
			Column:        "colors",
			Storage:       Set,
			ColonStrategy: Contains,
			AllowedOps:    ops(OpColon, OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseColor,
		},
		{
			Name:          "identity",
			Aliases:       []string{"id", "ci", "coloridentity"},
			Column:        "color_identity",
			Storage:       Set,
			ColonStrategy: Subset,
			AllowedOps:    ops(OpColon, OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseColor,
			NullSatisfiesNegation: true,
		},
		{
			Name:          "produces",
			Aliases:       []string{"produced_mana"},
			Column:        "produced_mana",
			Storage:       Set,
			ColonStrategy: Subset,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseColor,
		},
		{
			Name:          "mana",
			Aliases:       []string{"m", "manacost"},
			Column:        "mana_cost",
			Storage:       Set,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseManaCost,
		},
		{
			Name:          "cmc",
			Aliases:       []string{"mv", "manavalue"},
			Column:        "cmc",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "power",
			Aliases:       []string{"pow"},
			Column:        "creature_power",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "toughness",
			Aliases:       []string{"tou"},
			Column:        "creature_toughness",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "loyalty",
			Aliases:       []string{"loy"},
			Column:        "planeswalker_loyalty",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "edhrec",
			Aliases:       []string{"edhrecrank"},
			Column:        "edhrec_rank",
			Storage:       Numeric,
			Domain:        DomainInteger,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseInteger,
		},
		{
			Name:          "usd",
			Aliases:       []string{"price_usd"},
			Column:        "price_usd",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "eur",
			Aliases:       []string{"price_eur"},
			Column:        "price_eur",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "tix",
			Aliases:       []string{"price_tix"},
			Column:        "price_tix",
			Storage:       Numeric,
			Domain:        DomainFloat,
			AllowedOps:    ops(OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseFloat,
		},
		{
			Name:          "rarity",
			Aliases:       []string{"r"},
			Column:        "rarity",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseRarity,
		},
		{
			Name:          "set",
			Aliases:       []string{"s", "edition"},
			Column:        "set_code",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseSetCode,
		},
		{
			Name:          "number",
			Aliases:       []string{"cn", "collectornumber"},
			Column:        "collector_number",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseText,
		},
		{
			Name:          "border",
			Aliases:       []string{"bd"},
			Column:        "border_color",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseEnumerated(borderVocab),
		},
		{
			Name:          "layout",
			Aliases:       nil,
			Column:        "layout",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq),
			Parse:         ParseEnumerated(layoutVocab),
		},
		{
			Name:          "date",
			Aliases:       []string{"released"},
			Column:        "released_at",
			Storage:       Text,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon, OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte),
			Parse:         ParseDate,
		},
		{
			Name:          "legal",
			Aliases:       nil,
			Column:        "legalities",
			Storage:       Map,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon),
			Parse:         ParseEnumerated(nil),
		},
		{
			Name:          "banned",
			Aliases:       nil,
			Column:        "legalities",
			Storage:       Map,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon),
			Parse:         ParseEnumerated(nil),
		},
		{
			Name:          "restricted",
			Aliases:       nil,
			Column:        "legalities",
			Storage:       Map,
			ColonStrategy: Exact,
			AllowedOps:    ops(OpColon),
			Parse:         ParseEnumerated(nil),
		},
		{
			Name:          "is",
			Aliases:       nil,
			Column:        "is_tags",
			Storage:       Bool,
			ColonStrategy: Contains,
			AllowedOps:    ops(OpColon),
			Parse:         ParseBool,
			// NullSatisfiesNegation is false here: spec.md §8 scenario S4
			// compiles "-is:dfc" to a plain NOT(is_tags ? 'dfc'), relying on
			// SQL's native NULL propagation (a NULL is_tags already makes the
			// un-negated membership test NULL, so NOT() leaves the row
			// excluded without an explicit IS NULL branch).
		},
	}

	return NewRegistry(list)
}

// DirectiveNames are the query-level pseudo-fields the grammar routes to
// Directives instead of building a FieldPredicate atom for (spec.md §4.3's
// order/direction/prefer/unique handling).
var DirectiveNames = map[string]bool{
	"order":     true,
	"direction": true,
	"prefer":    true,
	"unique":    true,
	"limit":     true,
}
