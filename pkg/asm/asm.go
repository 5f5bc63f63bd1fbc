package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxAddress is the largest value an A-instruction can carry.
const MaxAddress = 0x7FFF

// varBase is the first RAM address handed out to undeclared symbols.
const varBase = 16

var predefined = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 0x4000,
	"KBD":    0x6000,
}

func init() {
	for i := 0; i < 16; i++ {
		predefined[fmt.Sprintf("R%d", i)] = uint16(i)
	}
}

// compTable maps a computation to its a-bit and six ALU control bits. The
// M forms are derived from the A forms in init.
var compTable = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,
}

func init() {
	for comp, bits := range compTable {
		if strings.Contains(comp, "A") {
			compTable[strings.ReplaceAll(comp, "A", "M")] = bits | 0b1000000
		}
	}
	// Commutative spellings.
	for _, r := range []string{"A", "M"} {
		compTable[r+"+D"] = compTable["D+"+r]
		compTable[r+"&D"] = compTable["D&"+r]
		compTable[r+"|D"] = compTable["D|"+r]
	}
}

var jumpTable = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

type lineKind int

const (
	lineEmpty lineKind = iota
	lineLabel
	lineAddress
	lineCompute
)

type parsedLine struct {
	lineNo int
	kind   lineKind
	symbol string // label name or A-instruction operand
	dest   string
	comp   string
	jump   string
}

// Assembler resolves symbols over two passes and encodes each instruction
// into one 16-bit word.
type Assembler struct {
	labels  map[string]uint16
	vars    map[string]uint16
	nextVar uint16
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels:  make(map[string]uint16),
		vars:    make(map[string]uint16),
		nextVar: varBase,
	}
}

// Assemble turns Hack assembly text into machine words plus a map from ROM
// address to 1-based source line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")
	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		parsed = append(parsed, p)
	}

	if err := a.pass1(parsed); err != nil {
		return nil, nil, err
	}
	return a.pass2(parsed)
}

// pass1 records the ROM address of every label definition.
func (a *Assembler) pass1(lines []parsedLine) error {
	var address uint32

	for _, p := range lines {
		switch p.kind {
		case lineLabel:
			if _, ok := predefined[p.symbol]; ok {
				return fmt.Errorf("label '%s' on line %d shadows a predefined symbol", p.symbol, p.lineNo)
			}
			if _, exists := a.labels[p.symbol]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", p.symbol, p.lineNo)
			}
			a.labels[p.symbol] = uint16(address)
		case lineAddress, lineCompute:
			if address > MaxAddress {
				return fmt.Errorf("program too large near line %d", p.lineNo)
			}
			address++
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []parsedLine) ([]uint16, map[uint16]int, error) {
	program := make([]uint16, 0, len(lines))
	sourceMap := make(map[uint16]int)

	for _, p := range lines {
		var (
			word uint16
			err  error
		)
		switch p.kind {
		case lineAddress:
			word, err = a.resolve(p.symbol, p.lineNo)
		case lineCompute:
			word, err = encodeCompute(p)
		default:
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		sourceMap[uint16(len(program))] = p.lineNo
		program = append(program, word)
	}

	return program, sourceMap, nil
}

// resolve returns the value of an A-instruction operand: a literal, a label,
// a predefined symbol, or a variable allocated on first use.
func (a *Assembler) resolve(symbol string, lineNo int) (uint16, error) {
	if isDigit(rune(symbol[0])) {
		value, err := strconv.ParseUint(symbol, 10, 16)
		if err != nil || value > MaxAddress {
			return 0, fmt.Errorf("address out of range on line %d: %s", lineNo, symbol)
		}
		return uint16(value), nil
	}
	if addr, ok := a.labels[symbol]; ok {
		return addr, nil
	}
	if addr, ok := predefined[symbol]; ok {
		return addr, nil
	}
	if addr, ok := a.vars[symbol]; ok {
		return addr, nil
	}
	if a.nextVar > MaxAddress {
		return 0, fmt.Errorf("out of variable space on line %d: %s", lineNo, symbol)
	}
	addr := a.nextVar
	a.vars[symbol] = addr
	a.nextVar++
	return addr, nil
}

func encodeCompute(p parsedLine) (uint16, error) {
	comp, ok := compTable[p.comp]
	if !ok {
		return 0, fmt.Errorf("invalid computation '%s' on line %d", p.comp, p.lineNo)
	}
	dest, err := parseDest(p.dest, p.lineNo)
	if err != nil {
		return 0, err
	}
	jump, ok := jumpTable[p.jump]
	if !ok {
		return 0, fmt.Errorf("invalid jump '%s' on line %d", p.jump, p.lineNo)
	}
	return 0b111<<13 | comp<<6 | dest<<3 | jump, nil
}

// parseDest accepts any ordering of the letters A, D and M.
func parseDest(dest string, lineNo int) (uint16, error) {
	var bits uint16
	for _, r := range dest {
		var bit uint16
		switch r {
		case 'A':
			bit = 0b100
		case 'D':
			bit = 0b010
		case 'M':
			bit = 0b001
		default:
			return 0, fmt.Errorf("invalid destination '%s' on line %d", dest, lineNo)
		}
		if bits&bit != 0 {
			return 0, fmt.Errorf("invalid destination '%s' on line %d", dest, lineNo)
		}
		bits |= bit
	}
	return bits, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	// Whitespace is insignificant anywhere in a line.
	line := strings.Join(strings.Fields(stripComments(raw)), "")
	if line == "" {
		return p, nil
	}

	switch {
	case line[0] == '(':
		if len(line) < 3 || line[len(line)-1] != ')' {
			return p, fmt.Errorf("invalid label on line %d: %s", lineNo, line)
		}
		name := line[1 : len(line)-1]
		if !isSymbol(name) {
			return p, fmt.Errorf("invalid label '%s' on line %d", name, lineNo)
		}
		p.kind = lineLabel
		p.symbol = name

	case line[0] == '@':
		operand := line[1:]
		if operand == "" || (!isNumber(operand) && !isSymbol(operand)) {
			return p, fmt.Errorf("invalid address '%s' on line %d", operand, lineNo)
		}
		p.kind = lineAddress
		p.symbol = operand

	default:
		p.kind = lineCompute
		rest := line
		if eq := strings.IndexByte(rest, '='); eq >= 0 {
			p.dest = rest[:eq]
			rest = rest[eq+1:]
			if p.dest == "" {
				return p, fmt.Errorf("empty destination on line %d", lineNo)
			}
		}
		if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			p.jump = rest[semi+1:]
			rest = rest[:semi]
			if p.jump == "" {
				return p, fmt.Errorf("empty jump on line %d", lineNo)
			}
		}
		p.comp = rest
	}

	return p, nil
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNumber(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return s != ""
}

// isSymbol accepts letters, digits and _ . $ : - with no leading digit.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 && isDigit(r) {
			return false
		}
		if unicode.IsLetter(r) || isDigit(r) {
			continue
		}
		switch r {
		case '_', '.', '$', ':', '-':
			continue
		}
		return false
	}

	return true
}

// Format renders machine words as .hack text, one 16-digit binary word per line.
func Format(words []uint16) string {
	var b strings.Builder
	b.Grow(len(words) * 17)
	for _, w := range words {
		fmt.Fprintf(&b, "%016b\n", w)
	}
	return b.String()
}
