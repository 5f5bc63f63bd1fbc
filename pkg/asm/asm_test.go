package asm

import (
	"reflect"
	"strings"
	"testing"

	"hackvm/pkg/cpu"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"Main.fib$ret.12", true},
		{"Main-eq-true.0", true},
		{"a:b", true},
		{"1abc", false},
		{"", false},
		{"ab c", false},
		{"a+b", false},
	}
	for _, tc := range tests {
		if got := isSymbol(tc.input); got != tc.want {
			t.Errorf("isSymbol(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	if !isNumber("0123") || isNumber("") || isNumber("12a") {
		t.Error("isNumber misclassified input")
	}
	if got := stripComments("D=A // set D"); got != "D=A " {
		t.Errorf("stripComments = %q", got)
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected []uint16
	}{
		{
			name: "Add",
			code: `// Computes R0 = 2 + 3
@2
D=A
@3
D=D+A
@0
M=D`,
			expected: []uint16{2, 0xEC10, 3, 0xE090, 0, 0xE308},
		},
		{
			name:     "Jumps",
			code:     "0;JMP\nD;JGT\nD;JEQ\nD;JGE\nD;JLT\nD;JNE\nD;JLE",
			expected: []uint16{0xEA87, 0xE301, 0xE302, 0xE303, 0xE304, 0xE305, 0xE306},
		},
		{
			name:     "Memory Forms",
			code:     "AM=M-1\nM=M+1\nD=M\nA=M-1\nD=D-M\nM=D|M\nD=!M",
			expected: []uint16{0xFCA8, 0xFDC8, 0xFC10, 0xFCA0, 0xF4D0, 0xF548, 0xFC50},
		},
		{
			name:     "Dest Order And Commutative Spellings",
			code:     "MD=M+1\nDM=M+1\nM=M|D\nD=A+D\nD=-1",
			expected: []uint16{0xFDD8, 0xFDD8, 0xF548, 0xE090, 0xEE90},
		},
		{
			name:     "Whitespace And Comments",
			code:     "  @7   // load\n\n\tD = A ; JMP\r\n",
			expected: []uint16{7, 0xEC17},
		},
		{
			name:     "Predefined Symbols",
			code:     "@SP\n@LCL\n@ARG\n@THIS\n@THAT\n@R0\n@R13\n@R15\n@SCREEN\n@KBD",
			expected: []uint16{0, 1, 2, 3, 4, 0, 13, 15, 16384, 24576},
		},
		{
			name:     "Variables",
			code:     "@a\n@b\n@a\n@Foo.3",
			expected: []uint16{16, 17, 16, 18},
		},
		{
			name: "Labels",
			code: `@i
M=1
(LOOP)
@i
D=M
@END
D;JEQ
@LOOP
0;JMP
(END)
@END
0;JMP`,
			expected: []uint16{16, 0xEFC8, 16, 0xFC10, 8, 0xE302, 2, 0xEA87, 8, 0xEA87},
		},
		{
			name:     "Max Address",
			code:     "@32767",
			expected: []uint16{32767},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Assemble(tt.code)
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %04X, got %04X", tt.expected, got)
			}
		})
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		msg  string
	}{
		{"Address Too Large", "@32768", "address out of range on line 1"},
		{"Bad Computation", "D=X", "invalid computation 'X' on line 1"},
		{"Bad Destination", "\nX=D", "invalid destination 'X' on line 2"},
		{"Repeated Destination", "DD=A", "invalid destination 'DD'"},
		{"Bad Jump", "D;JXX", "invalid jump 'JXX'"},
		{"Empty Destination", "=D", "empty destination on line 1"},
		{"Empty Jump", "D;", "empty jump on line 1"},
		{"Duplicate Label", "(LOOP)\n@1\n(LOOP)", "duplicate label 'LOOP' on line 3"},
		{"Shadowed Symbol", "(SP)", "shadows a predefined symbol"},
		{"Empty Label", "()", "invalid label on line 1"},
		{"Bad Label", "(1abc)", "invalid label '1abc'"},
		{"Unclosed Label", "(LOOP", "invalid label on line 1"},
		{"Empty Address", "@", "invalid address"},
		{"Bad Address", "@a+b", "invalid address 'a+b'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Assemble(tt.code)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected error containing %q, got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestAssemblerInstanceKeepsSymbols(t *testing.T) {
	a := NewAssembler()
	if _, _, err := a.Assemble("@x\n@y"); err != nil {
		t.Fatal(err)
	}
	got, _, err := a.Assemble("@z\n@x")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []uint16{18, 16}) {
		t.Errorf("expected variables to keep their addresses, got %v", got)
	}
}

func TestFormat(t *testing.T) {
	got := Format([]uint16{2, 0xEC10})
	want := "0000000000000010\n1110110000010000\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if Format(nil) != "" {
		t.Error("expected empty output for no words")
	}
}

// runCode assembles code, runs it on the emulator until it halts and returns
// the machine.
func runCode(t *testing.T, code string) *cpu.CPU {
	t.Helper()
	program, _, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	vm := cpu.NewCPU()
	if err := vm.Load(program); err != nil {
		t.Fatal(err)
	}
	if !vm.RunFor(100000) {
		t.Fatalf("program did not halt")
	}
	return vm
}

func TestAssembledProgramsRun(t *testing.T) {
	// R2 = R0 * R1 by repeated addition.
	vm := runCode(t, `@6
D=A
@R0
M=D
@7
D=A
@R1
M=D
@R2
M=0
(LOOP)
@R1
D=M
@END
D;JEQ
@R0
D=M
@R2
M=D+M
@R1
M=M-1
@LOOP
0;JMP
(END)
@END
0;JMP`)
	if vm.RAM[2] != 42 {
		t.Errorf("Mult: expected R2=42, got %d", vm.RAM[2])
	}

	// Max of two values.
	vm = runCode(t, `@3
D=A
@R0
M=D
@9
D=A
@R1
M=D
@R0
D=M
@R1
D=D-M
@FIRST
D;JGT
@R1
D=M
@STORE
0;JMP
(FIRST)
@R0
D=M
(STORE)
@R2
M=D`)
	if vm.RAM[2] != 9 {
		t.Errorf("Max: expected R2=9, got %d", vm.RAM[2])
	}
}
