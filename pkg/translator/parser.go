package translator

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parser walks the tokens of one unit a line at a time and asks the Emitter
// for exactly one template per recognised command. Its only state is a
// forward-only read cursor.
type Parser struct {
	tokens []Token
	pos    int
	em     *Emitter
	unit   string // used in error positions
}

// NewParser creates a dispatcher over tokens, which must end with EOF.
func NewParser(tokens []Token, em *Emitter) *Parser {
	return &Parser{tokens: tokens, em: em, unit: em.FileName()}
}

// peek returns the token n positions past the cursor, clamped to the final EOF.
func (p *Parser) peek(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) cur() Token {
	return p.peek(0)
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) errorf(tok Token, expected, msg string) error {
	return &Error{Unit: p.unit, Token: tok, Expected: expected, Msg: msg}
}

// skipBlank consumes end-of-line and comment tokens.
func (p *Parser) skipBlank() {
	for t := p.cur().Type; t == EOL || t == COMMENT; t = p.cur().Type {
		p.advance()
	}
}

// endLine consumes an optional trailing comment and the end of line. End of
// file is accepted too so the last command needs no trailing newline.
func (p *Parser) endLine(cmd Token) error {
	if p.cur().Type == COMMENT {
		p.advance()
	}
	switch p.cur().Type {
	case EOL:
		p.advance()
		return nil
	case EOF:
		return nil
	}
	if p.cur().Type.IsCommand() {
		return p.errorf(p.cur(), "end of line", "one command per line, found another after "+cmd.Lexeme)
	}
	return p.errorf(p.cur(), "end of line", "unexpected token after "+cmd.Lexeme)
}

// Run dispatches every command in the unit. The first malformed command
// aborts the run; whatever was already emitted must then be discarded.
func (p *Parser) Run() error {
	if len(p.tokens) == 0 {
		return nil
	}
	for {
		p.skipBlank()
		tok := p.cur()
		if tok.Type == EOF {
			return nil
		}
		if err := p.command(tok); err != nil {
			return err
		}
	}
}

func (p *Parser) command(tok Token) error {
	switch tok.Type {
	case ADD:
		p.em.Add()
	case SUB:
		p.em.Sub()
	case NEG:
		p.em.Neg()
	case EQ:
		p.em.Eq()
	case GT:
		p.em.Gt()
	case LT:
		p.em.Lt()
	case AND:
		p.em.And()
	case OR:
		p.em.Or()
	case NOT:
		p.em.Not()
	case RETURN:
		p.em.Return()
	case PUSH, POP:
		return p.memoryAccess(tok)
	case LABEL, GOTO, IF_GOTO:
		return p.branch(tok)
	case FUNCTION, CALL:
		return p.function(tok)
	case ILLEGAL:
		return p.errorf(tok, "a command", "illegal character")
	default:
		if tok.Type.IsSegment() {
			return p.errorf(tok, "a command", "segment without push or pop")
		}
		return p.errorf(tok, "a command", "unexpected token")
	}
	p.advance()
	return p.endLine(tok)
}

// number parses the NUMBER token at offset n past the cursor.
func (p *Parser) number(n int, after Token, what string) (int, error) {
	tok := p.peek(n)
	if tok.Type != NUMBER {
		return 0, p.errorf(tok, what, "missing operand after "+after.Lexeme)
	}
	v, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		return 0, p.errorf(tok, what, "number out of range")
	}
	return v, nil
}

func (p *Parser) memoryAccess(cmd Token) error {
	segTok := p.peek(1)
	seg, ok := segmentOf(segTok.Type)
	if !ok || (cmd.Type == POP && seg == SegConstant) {
		expected := "a segment"
		if cmd.Type == POP {
			expected = "a segment other than constant"
		}
		return p.errorf(segTok, expected, "invalid segment for "+cmd.Lexeme)
	}
	n, err := p.number(2, segTok, "an offset")
	if err != nil {
		return err
	}

	if cmd.Type == PUSH {
		err = p.em.Push(seg, n)
	} else {
		err = p.em.Pop(seg, n)
	}
	if err != nil {
		return p.errorf(p.peek(2), rangeText(offsetLimit(seg)), err.Error())
	}

	p.advance()
	p.advance()
	p.advance()
	return p.endLine(cmd)
}

func (p *Parser) branch(cmd Token) error {
	name := p.peek(1)
	if name.Type != IDENTIFIER {
		return p.errorf(name, "a label name", "missing label after "+cmd.Lexeme)
	}
	if err := p.checkName(name); err != nil {
		return err
	}

	switch cmd.Type {
	case LABEL:
		p.em.Label(name.Lexeme)
	case GOTO:
		p.em.Goto(name.Lexeme)
	case IF_GOTO:
		p.em.IfGoto(name.Lexeme)
	}

	p.advance()
	p.advance()
	return p.endLine(cmd)
}

func (p *Parser) function(cmd Token) error {
	name := p.peek(1)
	if name.Type != IDENTIFIER {
		return p.errorf(name, "a function name", "missing function name after "+cmd.Lexeme)
	}
	if err := p.checkName(name); err != nil {
		return err
	}
	what, limit := "an argument count", maxArgs
	if cmd.Type == FUNCTION {
		what, limit = "a local variable count", maxLocals
	}
	n, err := p.number(2, name, what)
	if err != nil {
		return err
	}
	if n > limit {
		return p.errorf(p.peek(2), rangeText(limit), fmt.Sprintf("%s count %d out of range", cmd.Lexeme, n))
	}

	if cmd.Type == FUNCTION {
		p.em.Function(name.Lexeme, n)
	} else {
		p.em.Call(name.Lexeme, n)
	}

	p.advance()
	p.advance()
	p.advance()
	return p.endLine(cmd)
}

// checkName rejects identifiers holding characters no assembly symbol may
// carry, such as a comment marker glued to a label.
func (p *Parser) checkName(tok Token) error {
	for _, r := range tok.Lexeme {
		if isSymbolRune(r) {
			continue
		}
		return p.errorf(tok, "letters, digits or _ . $ : -", fmt.Sprintf("invalid character %q in %s", r, tok.Lexeme))
	}
	return nil
}

func isSymbolRune(r rune) bool {
	if unicode.IsLetter(r) || isDigit(r) {
		return true
	}
	switch r {
	case '_', '.', '$', ':', '-':
		return true
	}
	return false
}
