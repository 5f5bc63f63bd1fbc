package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrNotVM is returned when a single input file does not carry the .vm extension.
	ErrNotVM = errors.New("not a .vm source")
	// ErrNoSources is returned when a directory holds no .vm files.
	ErrNoSources = errors.New("no .vm sources found")
)

// Error is a fatal translation error pinned to the offending token.
type Error struct {
	Unit     string // unit (file) name, may be empty
	Token    Token
	Expected string // what the dispatcher wanted instead, may be empty
	Msg      string
}

func (e *Error) Error() string {
	pos := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Col)
	if e.Unit != "" {
		pos = e.Unit + ":" + pos
	}
	got := e.Token.Lexeme
	switch e.Token.Type {
	case EOF:
		got = "end of file"
	case EOL:
		got = "end of line"
	}
	if e.Expected == "" {
		return fmt.Sprintf("%s: %s (got %q)", pos, e.Msg, got)
	}
	return fmt.Sprintf("%s: %s (got %q, expected %s)", pos, e.Msg, got, e.Expected)
}
