// Package query implements the DSL lexer and recursive-descent parser:
// raw query text in, a typed ast.Expr plus Directives out. Modeled on the
// teacher's parser/sqldef.go entry points (a thin package-level Parse
// function fronting an unexported tokenizer/builder pair) but built
// around a pre-tokenized slice instead of a streaming cursor, since the
// grammar's arith_pred/field_pred disambiguation (spec.md §4.2) needs
// multi-token lookahead.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mtgsearch/mtgsearch/ast"
	"github.com/mtgsearch/mtgsearch/fields"
)

func parseNumberLiteral(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

// Parser builds an AST from a token slice against a fields.Registry. The
// registry is injected (spec.md §9), never a package global.
type Parser struct {
	toks []Token
	pos  int
	reg  *fields.Registry
	dirs Directives
}

// Parse tokenizes src and parses it into an Expr plus Directives. A nil
// Expr with no error means the query was entirely directives (e.g.
// "order:cmc direction:desc").
func Parse(src string, reg *fields.Registry) (ast.Expr, Directives, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, Directives{}, err
	}
	p := &Parser{toks: toks, reg: reg}
	expr, err := p.parseOr()
	if err != nil {
		return nil, Directives{}, err
	}
	if p.cur().Kind != KindEOF {
		return nil, Directives{}, &SyntaxError{Offset: p.cur().Pos, Message: "unexpected trailing input " + p.cur().Text}
	}
	if err := p.dirs.validate(); err != nil {
		return nil, Directives{}, err
	}
	return expr, p.dirs, nil
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

// at peeks `offset` tokens ahead of cur, clamped to the trailing KindEOF.
func (p *Parser) at(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// parseOr implements `or_expr := and_expr (OR and_expr)*`.
func (p *Parser) parseOr() (ast.Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if first == nil && p.cur().Kind != KindOr {
		return nil, nil
	}
	xs := []ast.Expr{}
	if first != nil {
		xs = append(xs, first)
	}
	for p.cur().Kind == KindOr {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if next != nil {
			xs = append(xs, next)
		}
	}
	switch len(xs) {
	case 0:
		return nil, nil
	case 1:
		return xs[0], nil
	default:
		return &ast.Or{Xs: xs}, nil
	}
}

// parseAnd implements `and_expr := unary_expr ((AND|ε) unary_expr)*`: an
// explicit AND or mere adjacency both join operands (implicit
// conjunction, spec.md §4.2).
func (p *Parser) parseAnd() (ast.Expr, error) {
	xs := []ast.Expr{}
	for {
		if p.cur().Kind == KindAnd {
			p.advance()
		}
		if p.startsUnary() {
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if x != nil {
				xs = append(xs, x)
			}
			continue
		}
		break
	}
	switch len(xs) {
	case 0:
		return nil, nil
	case 1:
		return xs[0], nil
	default:
		return &ast.And{Xs: xs}, nil
	}
}

// startsUnary reports whether cur begins a unary_expr, i.e. whether the
// and-loop should keep consuming adjacent operands.
func (p *Parser) startsUnary() bool {
	switch p.cur().Kind {
	case KindNot, KindMinus, KindLParen, KindWord, KindQuotedString, KindNumber:
		return true
	default:
		return false
	}
}

// parseUnary implements `unary_expr := ('-'|NOT) unary_expr | primary`.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == KindNot || p.cur().Kind == KindMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, &SyntaxError{Offset: p.cur().Pos, Message: "negation with no operand"}
		}
		return &ast.Not{X: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary implements `primary := '(' or_expr ')' | arith_pred |
// field_pred | bareword`, including the directive short-circuit (an
// order:/direction:/prefer:/unique:/limit: token consumes its value and
// yields no Expr node).
func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.cur().Kind {
	case KindLParen:
		p.advance()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != KindRParen {
			return nil, &SyntaxError{Offset: p.cur().Pos, Message: "expected ')'"}
		}
		p.advance()
		if x == nil {
			return nil, &SyntaxError{Offset: p.cur().Pos, Message: "empty parenthesized group"}
		}
		return x, nil

	case KindQuotedString:
		tok := p.advance()
		return &ast.Bareword{Text: tok.Text}, nil

	case KindNumber:
		// A bare number with no following relop/field context is a literal
		// bareword search term (spec.md §4.2's bareword := Word | QuotedString
		// covers this loosely; numbers behave the same as Words here).
		return p.parseFieldOrArithOrBareword()

	case KindWord:
		return p.parseFieldOrArithOrBareword()

	default:
		return nil, &SyntaxError{Offset: p.cur().Pos, Message: "unexpected token " + p.cur().String()}
	}
}

// parseFieldOrArithOrBareword resolves the disambiguation rule in
// spec.md §4.2: a leading identifier is arith_pred if an arithmetic
// operator or a field-referencing relop follows, field_pred if a
// recognized field name is directly followed by its operator, and a
// plain bareword otherwise.
func (p *Parser) parseFieldOrArithOrBareword() (ast.Expr, error) {
	lead := p.advance()
	next := p.cur()

	switch next.Kind {
	case KindColon:
		return p.finishColon(lead)

	case KindPlus, KindMinus, KindStar, KindSlash:
		// An arithmetic operator can only follow a field reference inside
		// arith_term; an unresolved identifier here is a programmer-facing
		// UnknownField, not a silent bareword fallback, since the grammar has
		// already committed to arith_pred by virtue of the operator.
		return p.finishArith(lead)

	case KindEq, KindNeq, KindLt, KindLte, KindGt, KindGte:
		if p.rhsIsFieldReference() {
			return p.finishArith(lead)
		}
		return p.finishFieldPred(lead, next)

	default:
		return &ast.Bareword{Text: lead.Text}, nil
	}
}

// rhsIsFieldReference peeks past the relop at p.cur() to decide whether
// the right-hand side is itself a field reference or nested arithmetic
// expression (arith_pred) versus a plain literal (field_pred). This is
// the documented resolution of spec.md §4.2's "at least one side
// references a field" clause; see DESIGN.md's parser disambiguation
// entry.
func (p *Parser) rhsIsFieldReference() bool {
	rhs := p.at(1)
	if rhs.Kind == KindLParen {
		return true
	}
	if rhs.Kind != KindWord {
		return false
	}
	f, ok := p.reg.Lookup(strings.ToLower(rhs.Text))
	return ok && f.Storage == fields.Numeric
}

// finishColon handles `field ':' value`, including the directive
// short-circuit for order/direction/prefer/unique/limit pseudo-fields
// (spec.md §4.3).
func (p *Parser) finishColon(lead Token) (ast.Expr, error) {
	p.advance() // consume ':'
	name := strings.ToLower(lead.Text)

	if fields.DirectiveNames[name] {
		valTok := p.cur()
		if valTok.Kind != KindWord && valTok.Kind != KindNumber && valTok.Kind != KindQuotedString {
			return nil, &SyntaxError{Offset: valTok.Pos, Message: "expected directive value after " + lead.Text + ":"}
		}
		p.advance()
		var err error
		switch name {
		case "order":
			err = p.dirs.setOrder(valTok)
		case "direction":
			err = p.dirs.setDirection(valTok)
		case "prefer":
			err = p.dirs.setPrefer(valTok)
		case "unique":
			err = p.dirs.setUnique(valTok)
		case "limit":
			err = p.dirs.setLimit(valTok)
		}
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	f, ok := p.reg.Lookup(name)
	if !ok {
		return nil, &UnknownFieldError{Offset: lead.Pos, Token: lead.Text}
	}
	if !f.Allows(fields.OpColon) {
		return nil, &OperatorNotAllowedError{Offset: lead.Pos, Field: f.Name, Op: ":"}
	}
	valTok := p.cur()
	if valTok.Kind != KindWord && valTok.Kind != KindNumber && valTok.Kind != KindQuotedString {
		return nil, &SyntaxError{Offset: valTok.Pos, Message: "expected value after " + lead.Text + ":"}
	}
	p.advance()
	v, err := f.Parse(valTok.Text)
	if err != nil {
		return nil, &ValueParseError{Offset: valTok.Pos, Field: f.Name, Text: valTok.Text, Cause: err}
	}
	return &ast.FieldPredicate{Field: f, Op: fields.OpColon, Value: v, ValueText: valTok.Text}, nil
}

var relOpToFieldOp = map[Kind]fields.Operator{
	KindEq: fields.OpEq, KindNeq: fields.OpNeq, KindLt: fields.OpLt,
	KindLte: fields.OpLte, KindGt: fields.OpGt, KindGte: fields.OpGte,
}

var relOpToAstOp = map[Kind]ast.RelOp{
	KindEq: ast.RelEq, KindNeq: ast.RelNeq, KindLt: ast.RelLt,
	KindLte: ast.RelLte, KindGt: ast.RelGt, KindGte: ast.RelGte,
}

// finishFieldPred handles `field op value` for op in {=,!=,<,<=,>,>=}.
func (p *Parser) finishFieldPred(lead, opTok Token) (ast.Expr, error) {
	name := strings.ToLower(lead.Text)
	f, ok := p.reg.Lookup(name)
	if !ok {
		return nil, &UnknownFieldError{Offset: lead.Pos, Token: lead.Text}
	}
	op := relOpToFieldOp[opTok.Kind]
	if !f.Allows(op) {
		return nil, &OperatorNotAllowedError{Offset: lead.Pos, Field: f.Name, Op: string(op)}
	}
	p.advance() // consume operator
	valTok := p.cur()
	if valTok.Kind != KindWord && valTok.Kind != KindNumber && valTok.Kind != KindQuotedString {
		return nil, &SyntaxError{Offset: valTok.Pos, Message: "expected value after " + string(op)}
	}
	p.advance()
	v, err := f.Parse(valTok.Text)
	if err != nil {
		return nil, &ValueParseError{Offset: valTok.Pos, Field: f.Name, Text: valTok.Text, Cause: err}
	}
	return &ast.FieldPredicate{Field: f, Op: op, Value: v, ValueText: valTok.Text}, nil
}

// finishArith handles `arith_pred := arith_term relop arith_term`, with
// lead already consumed as the first token of the LHS arith_term.
func (p *Parser) finishArith(lead Token) (ast.Expr, error) {
	lhs, err := p.parseArithTermFrom(lead)
	if err != nil {
		return nil, err
	}
	opTok := p.cur()
	if !opTok.isRelOp() || opTok.Kind == KindColon {
		return nil, &SyntaxError{Offset: opTok.Pos, Message: "expected comparison operator in arithmetic predicate"}
	}
	p.advance()
	rhs, err := p.parseArithTerm()
	if err != nil {
		return nil, err
	}
	if !termReferencesField(lhs) && !termReferencesField(rhs) {
		return nil, &SyntaxError{Offset: opTok.Pos, Message: "arithmetic predicate must reference at least one field"}
	}
	if mismatched, fld := mixedNumericDomain(lhs, rhs); mismatched {
		return nil, &ValueParseError{
			Offset: opTok.Pos,
			Field:  fld.Name,
			Text:   fld.Name,
			Cause:  fmt.Errorf("field %q is %s but the predicate also references a %s field", fld.Name, domainName(fld.Domain), domainName(otherDomain(fld.Domain))),
		}
	}
	return &ast.Arith{LHS: lhs, Op: relOpToAstOp[opTok.Kind], RHS: rhs}, nil
}

func termReferencesField(t ast.Term) bool {
	switch v := t.(type) {
	case *ast.FieldRef:
		return true
	case *ast.ArithTerm:
		return termReferencesField(v.LHS) || termReferencesField(v.RHS)
	default:
		return false
	}
}

// fieldDomains collects, in left-to-right order, the field of every
// FieldRef reachable from t, so the caller can compare their numeric
// domains. NumberLit contributes nothing: a bare
// literal is domain-agnostic (spec.md §4.3 "cmc>3" stays legal).
func fieldDomains(t ast.Term) []*fields.Field {
	switch v := t.(type) {
	case *ast.FieldRef:
		return []*fields.Field{v.Field}
	case *ast.ArithTerm:
		return append(fieldDomains(v.LHS), fieldDomains(v.RHS)...)
	default:
		return nil
	}
}

// mixedNumericDomain implements SPEC_FULL.md §8 decision 2: both
// operands of an Arith must share the same numeric domain (Integer vs
// Float). Returns the first field whose domain disagrees with the first
// field seen, for use in the error message.
func mixedNumericDomain(lhs, rhs ast.Term) (bool, *fields.Field) {
	flds := append(fieldDomains(lhs), fieldDomains(rhs)...)
	if len(flds) == 0 {
		return false, nil
	}
	want := flds[0].Domain
	for _, f := range flds[1:] {
		if f.Domain != want {
			return true, f
		}
	}
	return false, nil
}

func domainName(d fields.NumericDomain) string {
	switch d {
	case fields.DomainInteger:
		return "integer"
	case fields.DomainFloat:
		return "float"
	default:
		return "numeric"
	}
}

func otherDomain(d fields.NumericDomain) fields.NumericDomain {
	if d == fields.DomainInteger {
		return fields.DomainFloat
	}
	return fields.DomainInteger
}

// parseArithTerm implements `arith_term := arith_term ('+'|'-') factor |
// factor`, left-associative, starting at the current token.
func (p *Parser) parseArithTerm() (ast.Term, error) {
	lead := p.advance()
	return p.parseArithTermFrom(lead)
}

// parseArithTermFrom continues arith_term parsing with `lead` already
// consumed as the first token of the first factor.
func (p *Parser) parseArithTermFrom(lead Token) (ast.Term, error) {
	lhs, err := p.parseFactorFrom(lead)
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == KindPlus || p.cur().Kind == KindMinus {
		opTok := p.advance()
		op := ast.ArithAdd
		if opTok.Kind == KindMinus {
			op = ast.ArithSub
		}
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		lhs = &ast.ArithTerm{LHS: lhs, Op: op, RHS: rhs}
	}
	return lhs, nil
}

// parseFactor implements `factor := factor ('*'|'/') atom_num |
// atom_num`, starting at the current token.
func (p *Parser) parseFactor() (ast.Term, error) {
	lead := p.advance()
	return p.parseFactorFrom(lead)
}

func (p *Parser) parseFactorFrom(lead Token) (ast.Term, error) {
	lhs, err := p.parseAtomNumFrom(lead)
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == KindStar || p.cur().Kind == KindSlash {
		opTok := p.advance()
		op := ast.ArithMul
		if opTok.Kind == KindSlash {
			op = ast.ArithDiv
		}
		rhsLead := p.advance()
		rhs, err := p.parseAtomNumFrom(rhsLead)
		if err != nil {
			return nil, err
		}
		lhs = &ast.ArithTerm{LHS: lhs, Op: op, RHS: rhs}
	}
	return lhs, nil
}

// parseAtomNumFrom implements `atom_num := number | field_ref | '('
// arith_term ')'` where `lead` is the already-consumed first token.
func (p *Parser) parseAtomNumFrom(lead Token) (ast.Term, error) {
	switch lead.Kind {
	case KindNumber:
		f, err := parseNumberLiteral(lead.Text)
		if err != nil {
			return nil, &SyntaxError{Offset: lead.Pos, Message: "invalid number " + lead.Text}
		}
		return &ast.NumberLit{Value: f}, nil

	case KindWord:
		fld, ok := p.reg.Lookup(strings.ToLower(lead.Text))
		if !ok {
			return nil, &UnknownFieldError{Offset: lead.Pos, Token: lead.Text}
		}
		if fld.Storage != fields.Numeric {
			return nil, &SyntaxError{Offset: lead.Pos, Message: "field " + fld.Name + " is not numeric"}
		}
		return &ast.FieldRef{Field: fld}, nil

	case KindLParen:
		inner, err := p.parseArithTerm()
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != KindRParen {
			return nil, &SyntaxError{Offset: p.cur().Pos, Message: "expected ')' in arithmetic expression"}
		}
		p.advance()
		return inner, nil

	default:
		return nil, &SyntaxError{Offset: lead.Pos, Message: "expected number, field, or '(' in arithmetic expression"}
	}
}
