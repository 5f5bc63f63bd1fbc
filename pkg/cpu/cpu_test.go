package cpu

import (
	"testing"

	"hackvm/pkg/asm"
)

// loadAsm assembles src and loads it into a fresh CPU.
func loadAsm(t *testing.T, src string) *CPU {
	t.Helper()
	words, _, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v\nAssembly:\n%s", err, src)
	}
	c := NewCPU()
	if err := c.Load(words); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c
}

func TestALU(t *testing.T) {
	const x, y = 17, 5
	tests := []struct {
		name string
		ctrl uint16
		want uint16
	}{
		{"0", 0b101010, 0},
		{"1", 0b111111, 1},
		{"-1", 0b111010, 0xFFFF},
		{"D", 0b001100, x},
		{"A", 0b110000, y},
		{"!D", 0b001101, ^uint16(x)},
		{"-D", 0b001111, uint16(0xFFFF - x + 1)},
		{"D+1", 0b011111, x + 1},
		{"A-1", 0b110010, y - 1},
		{"D+A", 0b000010, x + y},
		{"D-A", 0b010011, x - y},
		{"A-D", 0b000111, uint16(0x10000 + y - x)},
		{"D&A", 0b000000, x & y},
		{"D|A", 0b010101, x | y},
	}
	for _, tc := range tests {
		if got := alu(x, y, tc.ctrl); got != tc.want {
			t.Errorf("alu(%s) = 0x%04X; want 0x%04X", tc.name, got, tc.want)
		}
	}
}

func TestAddressAndCompute(t *testing.T) {
	c := loadAsm(t, `
@21
D=A
@100
M=D
D=D+M
`)
	c.Run()
	if c.RAM[100] != 21 {
		t.Errorf("RAM[100]: expected 21, got %d", c.RAM[100])
	}
	if c.D != 42 {
		t.Errorf("D: expected 42, got %d", c.D)
	}
	if c.Steps != 5 {
		t.Errorf("Steps: expected 5, got %d", c.Steps)
	}
}

func TestMemoryWriteUsesOldA(t *testing.T) {
	c := loadAsm(t, `
@100
AM=1
`)
	c.Run()
	if c.RAM[100] != 1 {
		t.Errorf("RAM[100]: expected 1, got %d", c.RAM[100])
	}
	if c.A != 1 {
		t.Errorf("A: expected 1, got %d", c.A)
	}
	if c.RAM[1] != 0 {
		t.Errorf("RAM[1]: expected 0, got %d", c.RAM[1])
	}
}

func TestJumpUsesOldA(t *testing.T) {
	c := loadAsm(t, `
@7
A=M;JMP
`)
	c.RAM[7] = 3
	c.Step()
	c.Step()
	if c.PC != 7 {
		t.Errorf("PC: expected 7, got %d", c.PC)
	}
	if c.A != 3 {
		t.Errorf("A: expected 3, got %d", c.A)
	}
}

func TestConditionalJumps(t *testing.T) {
	tests := []struct {
		jump  string
		value int16
		taken bool
	}{
		{"JGT", 1, true},
		{"JGT", 0, false},
		{"JEQ", 0, true},
		{"JEQ", -1, false},
		{"JGE", 0, true},
		{"JLT", -5, true},
		{"JLT", 5, false},
		{"JNE", 3, true},
		{"JNE", 0, false},
		{"JLE", -1, true},
		{"JLE", 1, false},
		{"JMP", 0, true},
	}
	for _, tc := range tests {
		c := loadAsm(t, "@100\nD;"+tc.jump+"\n")
		c.D = uint16(tc.value)
		c.Step()
		c.Step()
		if got := c.PC == 100; got != tc.taken {
			t.Errorf("D=%d D;%s: taken=%v, want %v", tc.value, tc.jump, got, tc.taken)
		}
	}
}

func TestHaltOnSelfLoop(t *testing.T) {
	c := loadAsm(t, `
@3
D=A
(END)
@END
0;JMP
`)
	if !c.RunFor(100) {
		t.Fatal("expected the machine to halt in its END loop")
	}
	if c.D != 3 {
		t.Errorf("D: expected 3, got %d", c.D)
	}
	if c.Steps > 10 {
		t.Errorf("Steps: expected to stop quickly, ran %d", c.Steps)
	}
}

func TestHaltPastEnd(t *testing.T) {
	c := loadAsm(t, "@1\n")
	c.Run()
	if !c.Halted {
		t.Error("expected Halted after the last instruction")
	}
	c.Step()
	if c.Steps != 1 {
		t.Errorf("Step on a halted machine must be a no-op, Steps=%d", c.Steps)
	}
}

func TestRunForBudget(t *testing.T) {
	// A conditional loop never counts as parked.
	c := loadAsm(t, `
(LOOP)
@LOOP
D=-1;JNE
`)
	if c.RunFor(1000) {
		t.Fatal("expected a live loop to exhaust its budget")
	}
	if c.Steps != 1000 {
		t.Errorf("Steps: expected 1000, got %d", c.Steps)
	}
}

func TestRunUntil(t *testing.T) {
	c := loadAsm(t, `
@5
D=A
@R0
M=D
(LOOP)
@LOOP
D;JNE
`)
	ok := c.RunUntil(100, func(c *CPU) bool { return c.RAM[0] == 5 })
	if !ok {
		t.Fatal("RunUntil: condition never held")
	}
	if c.PC != 4 {
		t.Errorf("PC: expected to stop right after the store, got %d", c.PC)
	}
}

func TestLoadTooLarge(t *testing.T) {
	c := NewCPU()
	if err := c.Load(make([]uint16, ROMSize+1)); err == nil {
		t.Error("expected an error for a program larger than ROM")
	}
}

func TestKeyboardAndStackTop(t *testing.T) {
	c := NewCPU()
	c.SetKey('A')
	if c.Word(KBD) != 'A' {
		t.Errorf("KBD: expected %d, got %d", 'A', c.Word(KBD))
	}
	c.RAM[SP] = 258
	c.RAM[257] = uint16(0xFFFF)
	if got := c.StackTop(); got != -1 {
		t.Errorf("StackTop: expected -1, got %d", got)
	}
	if got := c.Word(0xFFFF); got != 0 {
		t.Errorf("Word past RAM: expected 0, got %d", got)
	}
}
