package cpu

import "fmt"

const (
	RAMSize    = 0x8000
	ROMSize    = 0x8000
	ScreenBase = 0x4000
	ScreenSize = 0x2000 // 256 rows of 32 words
	KBD        = 0x6000
)

// Registers and segment pointers at the bottom of RAM.
const (
	SP   = 0
	LCL  = 1
	ARG  = 2
	THIS = 3
	THAT = 4
)

// CPU is a Hack machine: an A register, a D register, a program counter,
// instruction ROM and data RAM. The screen and keyboard are mapped into RAM.
type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	ROM []uint16
	RAM [RAMSize]uint16

	// Halted is set once PC leaves the loaded program or the program parks
	// itself in the canonical "@L / 0;JMP" loop at L.
	Halted bool

	Steps uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM and resets the registers. RAM is kept so a
// test can prepare memory before or after loading.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("program of %d words does not fit in ROM", len(program))
	}
	c.ROM = append(c.ROM[:0], program...)
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Steps = 0
	return nil
}

// SetKey writes the code of the key currently held down (0 for none).
func (c *CPU) SetKey(code uint16) {
	c.RAM[KBD] = code
}

// Word returns RAM[addr], ignoring addresses past the end of RAM.
func (c *CPU) Word(addr uint16) uint16 {
	if int(addr) >= RAMSize {
		return 0
	}
	return c.RAM[addr]
}

// StackTop returns the word just below the stack pointer.
func (c *CPU) StackTop() int16 {
	return int16(c.Word(c.RAM[SP] - 1))
}

func (c *CPU) write(addr, val uint16) {
	if int(addr) < RAMSize {
		c.RAM[addr] = val
	}
}

// alu computes the Hack ALU output for the six control bits in ctrl.
func alu(x, y uint16, ctrl uint16) uint16 {
	if ctrl&0b100000 != 0 { // zx
		x = 0
	}
	if ctrl&0b010000 != 0 { // nx
		x = ^x
	}
	if ctrl&0b001000 != 0 { // zy
		y = 0
	}
	if ctrl&0b000100 != 0 { // ny
		y = ^y
	}
	var out uint16
	if ctrl&0b000010 != 0 { // f
		out = x + y
	} else {
		out = x & y
	}
	if ctrl&0b000001 != 0 { // no
		out = ^out
	}
	return out
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= len(c.ROM) {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Steps++

	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return
	}

	a := instr >> 12 & 1
	ctrl := instr >> 6 & 0b111111
	dest := instr >> 3 & 0b111
	jump := instr & 0b111

	y := c.A
	if a == 1 {
		y = c.Word(c.A)
	}
	out := alu(c.D, y, ctrl)

	// M and the jump target both use A as it was before this instruction.
	addr := c.A
	if dest&0b001 != 0 {
		c.write(addr, out)
	}
	if dest&0b100 != 0 {
		c.A = out
	}
	if dest&0b010 != 0 {
		c.D = out
	}

	v := int16(out)
	taken := (jump&0b100 != 0 && v < 0) ||
		(jump&0b010 != 0 && v == 0) ||
		(jump&0b001 != 0 && v > 0)
	if !taken {
		c.PC++
		return
	}
	if addr == c.PC-1 && jump == 0b111 {
		// "(L) @L 0;JMP": an unconditional jump back to the @ that loaded
		// its own target never makes progress.
		c.Halted = true
	}
	c.PC = addr
}

func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
}

// RunFor steps until the machine halts or max instructions have executed. It
// reports whether the machine halted.
func (c *CPU) RunFor(max uint64) bool {
	for i := uint64(0); i < max && !c.Halted; i++ {
		c.Step()
	}
	return c.Halted
}

// RunUntil steps until done returns true, the machine halts, or max
// instructions have executed. It reports whether done was satisfied.
func (c *CPU) RunUntil(max uint64, done func(*CPU) bool) bool {
	for i := uint64(0); i < max && !c.Halted; i++ {
		if done(c) {
			return true
		}
		c.Step()
	}
	return done(c)
}
