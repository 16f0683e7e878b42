package query

import (
	"strings"

	"github.com/vegasq/askdata/schema"
)

// splitWhere cuts normalized text at the first "where" keyword. The head
// carries the intent, the returned tokens the filter clauses starting with
// the "where" token itself.
func splitWhere(text string) (string, []Token) {
	tokens := Tokenize(text)
	for i, tok := range tokens {
		if tok.Type == TokenWord && strings.EqualFold(tok.Value, "where") {
			return strings.TrimSpace(text[:tok.Pos]), tokens[i:]
		}
	}
	return text, nil
}

// Parser consumes "where|and <column> <op> <value>" clauses.
type Parser struct {
	src    string
	tokens []Token
	pos    int
	schema *schema.Schema
}

// wordOps maps operator phrases to operators, longest phrases first.
var wordOps = []struct {
	words []string
	op    Op
}{
	{[]string{"is", "not", "equal", "to"}, OpNe},
	{[]string{"greater", "than", "or", "equal", "to"}, OpGe},
	{[]string{"less", "than", "or", "equal", "to"}, OpLe},
	{[]string{"is", "greater", "than"}, OpGt},
	{[]string{"is", "less", "than"}, OpLt},
	{[]string{"is", "at", "least"}, OpGe},
	{[]string{"is", "at", "most"}, OpLe},
	{[]string{"not", "equal", "to"}, OpNe},
	{[]string{"greater", "than"}, OpGt},
	{[]string{"more", "than"}, OpGt},
	{[]string{"less", "than"}, OpLt},
	{[]string{"fewer", "than"}, OpLt},
	{[]string{"at", "least"}, OpGe},
	{[]string{"at", "most"}, OpLe},
	{[]string{"is", "not"}, OpNe},
	{[]string{"is", "above"}, OpGt},
	{[]string{"is", "below"}, OpLt},
	{[]string{"equal", "to"}, OpEq},
	{[]string{"contains"}, OpContains},
	{[]string{"contain"}, OpContains},
	{[]string{"includes"}, OpContains},
	{[]string{"like"}, OpContains},
	{[]string{"equals"}, OpEq},
	{[]string{"above"}, OpGt},
	{[]string{"below"}, OpLt},
	{[]string{"is"}, OpEq},
}

var symbolOps = map[TokenType]Op{
	TokenEqual:        OpEq,
	TokenNotEqual:     OpNe,
	TokenLess:         OpLt,
	TokenLessEqual:    OpLe,
	TokenGreater:      OpGt,
	TokenGreaterEqual: OpGe,
}

// NewParser creates a parser over filter tokens lexed from src.
func NewParser(src string, tokens []Token, s *schema.Schema) *Parser {
	return &Parser{src: src, tokens: tokens, schema: s}
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) atEOF() bool { return p.current().Type == TokenEOF }

// isWord reports whether the token at offset is one of words.
func (p *Parser) isWord(offset int, words ...string) bool {
	i := p.pos + offset
	if i >= len(p.tokens) || p.tokens[i].Type != TokenWord {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(p.tokens[i].Value, w) {
			return true
		}
	}
	return false
}

func (p *Parser) isSeparator() bool {
	return p.current().Type == TokenComma || p.isWord(0, "and", "where")
}

// operator returns the operator at the current position and how many
// tokens it spans.
func (p *Parser) operator() (Op, int, bool) {
	if op, ok := symbolOps[p.current().Type]; ok {
		return op, 1, true
	}
	for _, wo := range wordOps {
		matched := true
		for i, w := range wo.words {
			if !p.isWord(i, w) {
				matched = false
				break
			}
		}
		if matched {
			return wo.op, len(wo.words), true
		}
	}
	return 0, 0, false
}

// rest returns the source text from the current token on.
func (p *Parser) rest() string {
	return strings.TrimSpace(p.src[p.current().Pos:])
}

// ParseFilters consumes every clause. Text that does not form a clause is
// a NoMatch naming the fragment.
func (p *Parser) ParseFilters() ([]Predicate, error) {
	var preds []Predicate
	for !p.atEOF() {
		if !p.isSeparator() {
			return nil, &Error{Kind: NoMatch, Token: p.rest(), Detail: "could not parse filter text " + quote(p.rest()),
				Expected: "where <column> <op> <value>"}
		}
		p.pos++
		pred, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func (p *Parser) parsePredicate() (Predicate, error) {
	start := p.current().Pos
	var colWords []string
	for {
		if p.atEOF() || p.isSeparator() {
			fragment := strings.TrimSpace(p.src[start:p.current().Pos])
			return Predicate{}, &Error{Kind: NoMatch, Token: fragment,
				Detail:   "filter " + quote(fragment) + " has no operator",
				Expected: "=, !=, <, <=, >, >=, contains"}
		}
		if _, _, ok := p.operator(); ok {
			break
		}
		colWords = append(colWords, p.current().Value)
		p.pos++
	}

	op, width, _ := p.operator()
	opText := p.current().Value
	if len(colWords) == 0 {
		return Predicate{}, &Error{Kind: NoMatch, Token: opText,
			Detail: "filter operator " + quote(opText) + " has no column before it", Expected: "<column> <op> <value>"}
	}
	p.pos += width

	colToken := strings.Join(colWords, " ")
	col, err := p.schema.Resolve(colToken)
	if err != nil {
		return Predicate{}, fromResolveError(err)
	}

	value, err := p.parseValue(col)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Column: col, Op: op, Value: value}, nil
}

func (p *Parser) parseValue(col string) (Literal, error) {
	if tok := p.current(); tok.Type == TokenString {
		p.pos++
		if !p.atEOF() && !p.isSeparator() {
			return Literal{}, &Error{Kind: NoMatch, Token: p.rest(), Column: col,
				Detail: "unexpected text " + quote(p.rest()) + " after the value for " + col}
		}
		return Literal{Raw: tok.Value, Quoted: true}, nil
	}

	var words []string
	for !p.atEOF() && !p.isSeparator() {
		tok := p.current()
		if _, ok := symbolOps[tok.Type]; ok || tok.Type == TokenString {
			return Literal{}, &Error{Kind: NoMatch, Token: p.rest(), Column: col,
				Detail: "unexpected " + quote(tok.Value) + " in the value for " + col}
		}
		words = append(words, tok.Value)
		p.pos++
	}
	if len(words) == 0 {
		return Literal{}, &Error{Kind: NoMatch, Column: col, Detail: "filter on " + col + " has no value",
			Expected: "a number, date or quoted text"}
	}
	return Literal{Raw: strings.Join(words, " ")}, nil
}

func quote(s string) string {
	return `"` + s + `"`
}
