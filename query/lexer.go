package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vegasq/askdata/dataset"
)

// Lexer tokenizes question text. Words keep their original spelling; the
// matcher compares them case-insensitively.
type Lexer struct {
	input string
	pos   int // byte offset of ch
	next  int // byte offset after ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.pos = l.next
	if l.next >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.ch = r
	l.next += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string
func (l *Lexer) readString(quote rune) string {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' && l.peekChar() == quote {
			l.readChar()
		}
		result.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // skip closing quote
	}

	return result.String()
}

// isBreak reports whether ch ends a bare word.
func (l *Lexer) isBreak() bool {
	switch l.ch {
	case 0, '=', '<', '>':
		return true
	case '!':
		return l.peekChar() == '='
	case ',':
		// "1,250" stays one word; "a, b" does not.
		p := l.peekChar()
		return p == 0 || unicode.IsSpace(p)
	}
	return unicode.IsSpace(l.ch)
}

// readWord reads a bare word: identifiers, numbers, dates and file names.
// Quotes inside a word ("what's") belong to the word.
func (l *Lexer) readWord() string {
	start := l.pos
	for !l.isBreak() {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch {
	case l.ch == 0:
		tok.Type = TokenEOF
	case l.ch == '=':
		tok.Type, tok.Value = TokenEqual, "="
		l.readChar()
		if l.ch == '=' {
			l.readChar()
		}
	case l.ch == '!' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		tok.Type, tok.Value = TokenNotEqual, "!="
	case l.ch == '<':
		l.readChar()
		switch l.ch {
		case '=':
			l.readChar()
			tok.Type, tok.Value = TokenLessEqual, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Value = TokenNotEqual, "!="
		default:
			tok.Type, tok.Value = TokenLess, "<"
		}
	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			tok.Type, tok.Value = TokenGreaterEqual, ">="
		} else {
			tok.Type, tok.Value = TokenGreater, ">"
		}
	case l.ch == '\'' || l.ch == '"':
		tok.Type, tok.Value = TokenString, l.readString(l.ch)
	case l.ch == ',':
		tok.Type, tok.Value = TokenComma, ","
		l.readChar()
	default:
		tok.Value = l.readWord()
		if _, ok := dataset.ParseNumber(tok.Value); ok {
			tok.Type = TokenNumber
		} else {
			tok.Type = TokenWord
		}
	}

	return tok
}

// Tokenize returns all tokens from the input, ending with TokenEOF.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'", "‚", "'",
)

// Normalize trims the question, unifies typographic quotes, collapses runs
// of whitespace outside quoted literals and drops trailing "?", "!" and
// ".". Case is preserved.
func Normalize(text string) string {
	text = quoteReplacer.Replace(text)

	var b strings.Builder
	var quote, prev rune
	pendingSpace := false
	for _, r := range text {
		atStart := prev == 0 || pendingSpace || strings.ContainsRune("=<>!", prev)
		prev = r
		if quote == 0 && unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		switch {
		case quote == 0 && atStart && (r == '"' || r == '\''):
			quote = r
		case r == quote:
			quote = 0
		}
		b.WriteRune(r)
	}

	return strings.TrimRight(b.String(), "?!. ")
}
