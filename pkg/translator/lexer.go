package translator

import "strings"

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"push":     PUSH,
	"pop":      POP,
	"local":    LOCAL,
	"argument": ARGUMENT,
	"static":   STATIC,
	"constant": CONSTANT,
	"this":     THIS,
	"that":     THAT,
	"pointer":  POINTER,
	"temp":     TEMP,
	"add":      ADD,
	"sub":      SUB,
	"neg":      NEG,
	"eq":       EQ,
	"gt":       GT,
	"lt":       LT,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"label":    LABEL,
	"goto":     GOTO,
	"if-goto":  IF_GOTO,
	"function": FUNCTION,
	"call":     CALL,
	"return":   RETURN,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
}

// newLexer drops carriage returns up front so CRLF input scans exactly like LF.
func newLexer(src string) *Lexer {
	src = strings.ReplaceAll(src, "\r", "")
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// skipWhitespace stops at '\n', which is a token of its own.
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		r := l.peek()
		if r == '\n' || !isSpace(r) {
			return
		}
		l.advance()
	}
}

// scan consumes runes while keep returns true and builds a token of type tt
// spanning them. The first rune is always consumed.
func (l *Lexer) scan(tt TokenType, keep func(rune) bool) Token {
	line, col := l.line, l.col
	start := l.pos
	endLine, endCol := l.line, l.col
	l.advance()
	for !l.atEnd() && keep(l.peek()) {
		endLine, endCol = l.line, l.col
		l.advance()
	}
	return Token{
		Type:    tt,
		Lexeme:  string(l.src[start:l.pos]),
		Line:    line,
		Col:     col,
		EndLine: endLine,
		EndCol:  endCol,
	}
}

// single consumes exactly one rune as a token of type tt.
func (l *Lexer) single(tt TokenType) Token {
	line, col := l.line, l.col
	r := l.advance()
	return Token{Type: tt, Lexeme: string(r), Line: line, Col: col, EndLine: line, EndCol: col}
}

// scanWord collects a maximal non-whitespace run and classifies it as a
// keyword or an identifier. The first rune (a letter) must still be at l.peek().
func (l *Lexer) scanWord() Token {
	tok := l.scan(IDENTIFIER, func(r rune) bool { return !isSpace(r) })
	if kw, ok := keywords[tok.Lexeme]; ok {
		tok.Type = kw
	}
	return tok
}

// nextToken skips blanks and returns the next Token. It never fails: input
// it cannot classify comes back as ILLEGAL.
func (l *Lexer) nextToken() Token {
	l.skipWhitespace()
	if l.atEnd() {
		return Token{Type: EOF, Line: l.line, Col: l.col, EndLine: l.line, EndCol: l.col}
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		return l.single(EOL)
	case ch == '/' && l.peek2() == '/':
		return l.scan(COMMENT, func(r rune) bool { return r != '\n' })
	case isDigit(ch):
		return l.scan(NUMBER, isDigit)
	case isLetter(ch):
		return l.scanWord()
	default:
		return l.single(ILLEGAL)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f':
		return true
	}
	return false
}
