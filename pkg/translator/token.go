package translator

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Memory access commands
	PUSH // "push"
	POP  // "pop"

	// Segments
	LOCAL    // "local"
	ARGUMENT // "argument"
	STATIC   // "static"
	CONSTANT // "constant"
	THIS     // "this"
	THAT     // "that"
	POINTER  // "pointer"
	TEMP     // "temp"

	// Arithmetic / logical commands
	ADD // "add"
	SUB // "sub"
	NEG // "neg"
	EQ  // "eq"
	GT  // "gt"
	LT  // "lt"
	AND // "and"
	OR  // "or"
	NOT // "not"

	// Branching commands
	LABEL   // "label"
	GOTO    // "goto"
	IF_GOTO // "if-goto"

	// Function commands
	FUNCTION // "function"
	CALL     // "call"
	RETURN   // "return"

	// Everything else
	NUMBER     // run of decimal digits
	IDENTIFIER // label / function name
	COMMENT    // "// ..." up to end of line
	EOL        // '\n'
	ILLEGAL    // any character the lexer does not recognise
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	PUSH:       "PUSH",
	POP:        "POP",
	LOCAL:      "LOCAL",
	ARGUMENT:   "ARGUMENT",
	STATIC:     "STATIC",
	CONSTANT:   "CONSTANT",
	THIS:       "THIS",
	THAT:       "THAT",
	POINTER:    "POINTER",
	TEMP:       "TEMP",
	ADD:        "ADD",
	SUB:        "SUB",
	NEG:        "NEG",
	EQ:         "EQ",
	GT:         "GT",
	LT:         "LT",
	AND:        "AND",
	OR:         "OR",
	NOT:        "NOT",
	LABEL:      "LABEL",
	GOTO:       "GOTO",
	IF_GOTO:    "IF_GOTO",
	FUNCTION:   "FUNCTION",
	CALL:       "CALL",
	RETURN:     "RETURN",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	COMMENT:    "COMMENT",
	EOL:        "EOL",
	ILLEGAL:    "ILLEGAL",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsSegment reports whether tt names a memory segment.
func (tt TokenType) IsSegment() bool {
	return tt >= LOCAL && tt <= TEMP
}

// IsCommand reports whether tt can start a VM command.
func (tt TokenType) IsCommand() bool {
	return tt == PUSH || tt == POP || (tt >= ADD && tt <= RETURN)
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type    TokenType
	Lexeme  string // the exact source text that was matched
	Line    int    // 1-based line of the first character
	Col     int    // 1-based column of the first character
	EndLine int
	EndCol  int // column of the last character
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
