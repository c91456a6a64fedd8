package query

import (
	"strconv"
	"strings"
)

// orderVocabulary is the set of accepted `order:` values (spec.md §4.3).
var orderVocabulary = map[string]bool{
	"name": true, "cmc": true, "edhrec": true, "price_usd": true,
	"price_eur": true, "price_tix": true, "released": true, "color": true,
	"rarity": true, "set": true, "prefer": true,
}

var uniqueVocabulary = map[string]bool{"cards": true, "art": true, "prints": true}
var preferVocabulary = map[string]bool{"default": true, "newest": true, "oldest": true}

// MaxLimit bounds an explicit `limit:` override (spec.md §4.3: "capped").
const MaxLimit = 1000

// DefaultLimit is applied by the compiler when no `limit:` directive is
// present.
const DefaultLimit = 100

// Directives carries the query-level pseudo-fields extracted out of the
// AST during parsing: order, direction, prefer, unique, limit (spec.md
// §4.3). Zero value means "not specified"; the compiler applies defaults.
type Directives struct {
	Order       string
	HasOrder    bool
	Direction   string
	HasDir      bool
	Prefer      string
	HasPrefer   bool
	Unique      string
	HasUnique   bool
	Limit       int
	HasLimit    bool
}

func (d *Directives) setOrder(tok Token) error {
	v := strings.ToLower(tok.Text)
	if !orderVocabulary[v] {
		return &SyntaxError{Offset: tok.Pos, Message: "unrecognized order value " + tok.Text}
	}
	if d.HasOrder {
		return &SyntaxError{Offset: tok.Pos, Message: "order specified more than once"}
	}
	d.Order, d.HasOrder = v, true
	return nil
}

func (d *Directives) setDirection(tok Token) error {
	v := strings.ToLower(tok.Text)
	if v != "asc" && v != "desc" {
		return &SyntaxError{Offset: tok.Pos, Message: "unrecognized direction value " + tok.Text}
	}
	if d.HasDir {
		return &SyntaxError{Offset: tok.Pos, Message: "direction specified more than once"}
	}
	d.Direction, d.HasDir = v, true
	return nil
}

func (d *Directives) setPrefer(tok Token) error {
	v := strings.ToLower(tok.Text)
	if !preferVocabulary[v] {
		return &SyntaxError{Offset: tok.Pos, Message: "unrecognized prefer value " + tok.Text}
	}
	if d.HasPrefer {
		return &SyntaxError{Offset: tok.Pos, Message: "prefer specified more than once"}
	}
	d.Prefer, d.HasPrefer = v, true
	return nil
}

func (d *Directives) setUnique(tok Token) error {
	v := strings.ToLower(tok.Text)
	if !uniqueVocabulary[v] {
		return &SyntaxError{Offset: tok.Pos, Message: "unrecognized unique value " + tok.Text}
	}
	if d.HasUnique {
		return &SyntaxError{Offset: tok.Pos, Message: "unique specified more than once"}
	}
	d.Unique, d.HasUnique = v, true
	return nil
}

func (d *Directives) setLimit(tok Token) error {
	n, err := strconv.Atoi(tok.Text)
	if err != nil || n <= 0 {
		return &SyntaxError{Offset: tok.Pos, Message: "invalid limit value " + tok.Text}
	}
	if d.HasLimit {
		return &SyntaxError{Offset: tok.Pos, Message: "limit specified more than once"}
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	d.Limit, d.HasLimit = n, true
	return nil
}

// validate enforces the order:prefer / prefer: contradiction rule
// (SPEC_FULL.md §8 decision 1): order:prefer already means "sort by
// preference score," so an additional prefer: directive would be
// ambiguous about which axis it modifies.
func (d *Directives) validate() error {
	if d.HasOrder && d.Order == "prefer" && d.HasPrefer {
		return &SyntaxError{Message: "order:prefer and an explicit prefer: directive cannot both be specified"}
	}
	return nil
}
