package compiler

import (
	"github.com/mtgsearch/mtgsearch/plan"
	"github.com/mtgsearch/mtgsearch/query"
)

// orderColumns maps an `order:` directive value to its backing column
// (spec.md §4.3). "prefer" has no field-registry column; it is a
// precomputed per-printing recommendation score the store layer
// maintains outside the card schema proper.
var orderColumns = map[string]string{
	"name":      "card_name",
	"cmc":       "cmc",
	"edhrec":    "edhrec_rank",
	"price_usd": "price_usd",
	"price_eur": "price_eur",
	"price_tix": "price_tix",
	"released":  "released_at",
	"color":     "colors",
	"rarity":    "rarity",
	"set":       "set_code",
	"prefer":    "prefer_score",
}

// buildOrdering implements SPEC_FULL.md §8 decision 1: `order` (default
// `edhrec`) is always the primary sort key, with a secondary tiebreaker
// unless `order` already is `edhrec`. `prefer` (default `default`)
// rewrites that secondary tiebreaker: `newest`/`oldest` sort by
// `released_at` DESC/ASC instead of the plain `edhrec ASC NULLS LAST`
// fallback (spec.md §4.3: "prefer rewrites the secondary ORDER BY
// accordingly"). `unique` selects the DISTINCT ON key.
func buildOrdering(dirs query.Directives) ([]plan.OrderTerm, string, error) {
	order := "edhrec"
	if dirs.HasOrder {
		order = dirs.Order
	}
	direction := "asc"
	if dirs.HasDir {
		direction = dirs.Direction
	}
	col, ok := orderColumns[order]
	if !ok {
		return nil, "", &CompilerInvariantError{Detail: "unrecognized order column " + order}
	}

	terms := []plan.OrderTerm{{Column: col, Direction: direction, NullsLast: true}}
	if order != "edhrec" {
		terms = append(terms, secondaryOrderTerm(dirs))
	}

	uniqueMode := "cards"
	if dirs.HasUnique {
		uniqueMode = dirs.Unique
	}
	return terms, uniqueMode, nil
}

// secondaryOrderTerm implements the prefer-driven tiebreaker rewrite:
// "newest" and "oldest" both sort by release date instead of edhrec rank,
// in opposite directions; "default" (or no prefer: at all) keeps the
// plain edhrec fallback.
func secondaryOrderTerm(dirs query.Directives) plan.OrderTerm {
	prefer := "default"
	if dirs.HasPrefer {
		prefer = dirs.Prefer
	}
	switch prefer {
	case "newest":
		return plan.OrderTerm{Column: orderColumns["released"], Direction: "desc", NullsLast: true}
	case "oldest":
		return plan.OrderTerm{Column: orderColumns["released"], Direction: "asc", NullsLast: true}
	default:
		return plan.OrderTerm{Column: orderColumns["edhrec"], Direction: "asc", NullsLast: true}
	}
}
