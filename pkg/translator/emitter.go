package translator

import (
	"fmt"
	"strings"
)

// Counters are the two monotonic label counters of an Emitter. A run that
// splits its units across several emitters seeds each one with the values the
// previous units would have left behind, so generated labels stay unique.
type Counters struct {
	Bool   uint64 // comparison labels
	Return uint64 // call-site return labels
}

// Emitter turns VM commands into Hack assembly text. It owns every piece of
// cross-line state: the current file (static namespace), the current function
// (label scope) and the label counters.
type Emitter struct {
	out      strings.Builder
	fileName string
	funcName string // empty until the first function command
	counters Counters
}

// NewEmitter returns an Emitter with zeroed counters scoped to the bootstrap
// pseudo-file.
func NewEmitter() *Emitter {
	return NewEmitterAt(Counters{})
}

// NewEmitterAt returns an Emitter whose counters start at c.
func NewEmitterAt(c Counters) *Emitter {
	return &Emitter{fileName: bootstrapFile, counters: c}
}

// SetFileName switches the static namespace and clears the function scope.
func (e *Emitter) SetFileName(name string) {
	e.fileName = name
	e.funcName = ""
}

// SetFunctionName makes name the label scope for subsequent commands.
func (e *Emitter) SetFunctionName(name string) {
	e.funcName = name
}

// FileName returns the active static namespace.
func (e *Emitter) FileName() string { return e.fileName }

// Counters returns the current label counters.
func (e *Emitter) Counters() Counters { return e.counters }

// String returns everything emitted so far.
func (e *Emitter) String() string { return e.out.String() }

// Len returns the number of bytes emitted so far.
func (e *Emitter) Len() int { return e.out.Len() }

func (e *Emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, format+"\n", args...)
}

// comment opens a new command block: a blank separator line followed by the
// source command echoed as an assembly comment.
func (e *Emitter) comment(format string, args ...any) {
	e.out.WriteByte('\n')
	e.line("// "+format, args...)
}

// labelPrefix is the function name, or the file name outside any function.
func (e *Emitter) labelPrefix() string {
	if e.funcName != "" {
		return e.funcName
	}
	return e.fileName
}

func (e *Emitter) scoped(label string) string {
	return e.labelPrefix() + "$" + label
}

func (e *Emitter) nextBool() uint64 {
	n := e.counters.Bool
	e.counters.Bool++
	return n
}

func (e *Emitter) nextReturn() uint64 {
	n := e.counters.Return
	e.counters.Return++
	return n
}

// pushD writes D to *SP and increments SP.
func (e *Emitter) pushD() {
	e.line("@SP")
	e.line("A=M")
	e.line("M=D")
	e.line("@SP")
	e.line("M=M+1")
}

// popD decrements SP and loads the old top of stack into D.
func (e *Emitter) popD() {
	e.line("@SP")
	e.line("AM=M-1")
	e.line("D=M")
}

// binary pops y into D and replaces x on the new top with x op y.
func (e *Emitter) binary(name, comp string) {
	e.comment("%s", name)
	e.popD()
	e.line("@SP")
	e.line("A=M-1")
	e.line("M=%s", comp)
}

func (e *Emitter) unary(name, comp string) {
	e.comment("%s", name)
	e.line("@SP")
	e.line("A=M-1")
	e.line("M=%s", comp)
}

// compare leaves -1 (true) or 0 (false) in place of the two operands.
func (e *Emitter) compare(name, jump string) {
	id := e.nextBool()
	prefix := e.labelPrefix()
	trueLabel := fmt.Sprintf("%s-%s-true.%d", prefix, name, id)
	doneLabel := fmt.Sprintf("%s-%s-done.%d", prefix, name, id)

	e.comment("%s", name)
	e.popD()
	e.line("@SP")
	e.line("A=M-1")
	e.line("D=M-D")
	e.line("@%s", trueLabel)
	e.line("D;%s", jump)
	e.line("@%s", doneLabel)
	e.line("D=0;JMP")
	e.line("(%s)", trueLabel)
	e.line("D=-1")
	e.line("(%s)", doneLabel)
	e.line("@SP")
	e.line("A=M-1")
	e.line("M=D")
}

// Add emits x+y.
func (e *Emitter) Add() { e.binary("add", "D+M") }

// Sub emits x-y.
func (e *Emitter) Sub() { e.binary("sub", "M-D") }

// And emits x&y.
func (e *Emitter) And() { e.binary("and", "D&M") }

// Or emits x|y.
func (e *Emitter) Or() { e.binary("or", "D|M") }

// Neg emits -y.
func (e *Emitter) Neg() { e.unary("neg", "-M") }

// Not emits !y.
func (e *Emitter) Not() { e.unary("not", "!M") }

// Eq emits x==y.
func (e *Emitter) Eq() { e.compare("eq", "JEQ") }

// Gt emits x>y.
func (e *Emitter) Gt() { e.compare("gt", "JGT") }

// Lt emits x<y.
func (e *Emitter) Lt() { e.compare("lt", "JLT") }

// Push emits push <seg> <n>. The offset is validated before anything is
// written, so a rejected command leaves the output untouched.
func (e *Emitter) Push(seg Segment, n int) error {
	if err := checkOffset(seg, n); err != nil {
		return err
	}

	e.comment("push %s %d", seg, n)
	switch seg {
	case SegConstant:
		e.line("@%d", n)
		e.line("D=A")
	case SegStatic:
		e.line("@%s.%d", e.fileName, n)
		e.line("D=M")
	case SegTemp:
		e.line("@%d", tempBase+n)
		e.line("D=M")
	case SegPointer:
		e.line("@%s", pointerBase(n))
		e.line("D=M")
	default:
		base, ok := seg.base()
		if !ok {
			return fmt.Errorf("cannot push from segment %s", seg)
		}
		e.line("@%s", base)
		e.line("D=M")
		e.line("@%d", n)
		e.line("A=D+A")
		e.line("D=M")
	}
	e.pushD()
	return nil
}

// Pop emits pop <seg> <n>. Popping into constant is rejected because an
// immediate has no backing storage.
func (e *Emitter) Pop(seg Segment, n int) error {
	if seg == SegConstant {
		return fmt.Errorf("cannot pop into segment %s", seg)
	}
	if err := checkOffset(seg, n); err != nil {
		return err
	}

	e.comment("pop %s %d", seg, n)
	switch seg {
	case SegStatic:
		e.popD()
		e.line("@%s.%d", e.fileName, n)
		e.line("M=D")
	case SegTemp:
		e.popD()
		e.line("@%d", tempBase+n)
		e.line("M=D")
	case SegPointer:
		e.popD()
		e.line("@%s", pointerBase(n))
		e.line("M=D")
	default:
		base, ok := seg.base()
		if !ok {
			return fmt.Errorf("cannot pop into segment %s", seg)
		}
		// The target address goes to R13 first: D is needed for the value.
		e.line("@%d", n)
		e.line("D=A")
		e.line("@%s", base)
		e.line("D=D+M")
		e.line("@%s", scratch)
		e.line("M=D")
		e.popD()
		e.line("@%s", scratch)
		e.line("A=M")
		e.line("M=D")
	}
	return nil
}

func pointerBase(n int) string {
	if n == 0 {
		return "THIS"
	}
	return "THAT"
}

// Label emits a label definition scoped to the current function or file.
func (e *Emitter) Label(name string) {
	e.comment("label %s", name)
	e.line("(%s)", e.scoped(name))
}

// Goto emits an unconditional jump to a scoped label.
func (e *Emitter) Goto(name string) {
	e.comment("goto %s", name)
	e.line("@%s", e.scoped(name))
	e.line("0;JMP")
}

// IfGoto pops the top of stack and jumps to a scoped label when it is non-zero.
func (e *Emitter) IfGoto(name string) {
	e.comment("if-goto %s", name)
	e.popD()
	e.line("@%s", e.scoped(name))
	e.line("D;JNE")
}

// Function emits the global entry label of name, zeroes nVars locals and
// makes name the label scope for what follows.
func (e *Emitter) Function(name string, nVars int) {
	e.comment("function %s %d", name, nVars)
	e.line("(%s)", name)
	if nVars > 0 {
		e.line("@SP")
		e.line("A=M")
		for i := 0; i < nVars; i++ {
			e.line("M=0")
			e.line("A=A+1")
		}
		e.line("D=A")
		e.line("@SP")
		e.line("M=D")
	}
	e.SetFunctionName(name)
}

// Call emits the caller half of the linkage:
// push return address, LCL, ARG, THIS, THAT; ARG = SP-nArgs-5; LCL = SP;
// jump to name; define the return label.
func (e *Emitter) Call(name string, nArgs int) {
	ret := fmt.Sprintf("%s$ret.%d", name, e.nextReturn())

	e.comment("call %s %d", name, nArgs)
	e.line("@%s", ret)
	e.line("D=A")
	e.pushD()
	for _, ptr := range []string{"LCL", "ARG", "THIS", "THAT"} {
		e.line("@%s", ptr)
		e.line("D=M")
		e.pushD()
	}
	e.line("@SP")
	e.line("D=M")
	e.line("@%d", nArgs+frameSize)
	e.line("D=D-A")
	e.line("@ARG")
	e.line("M=D")
	e.line("@SP")
	e.line("D=M")
	e.line("@LCL")
	e.line("M=D")
	e.line("@%s", name)
	e.line("0;JMP")
	e.line("(%s)", ret)
}

// Return emits the callee half of the linkage. The order is load-bearing:
// the return address is saved before *ARG is overwritten (with no arguments
// they are the same cell), and each saved pointer is read from the frame
// before LCL itself is restored.
func (e *Emitter) Return() {
	e.comment("return")

	// R13 = *(LCL-5)
	e.line("@LCL")
	e.line("D=M")
	e.line("@%d", frameSize)
	e.line("A=D-A")
	e.line("D=M")
	e.line("@%s", scratch)
	e.line("M=D")

	// *ARG = pop(); SP = ARG+1
	e.popD()
	e.line("@ARG")
	e.line("A=M")
	e.line("M=D")
	e.line("D=A+1")
	e.line("@SP")
	e.line("M=D")

	// THAT, THIS, ARG, LCL = *(LCL-1), *(LCL-2), *(LCL-3), *(LCL-4)
	for _, ptr := range []string{"THAT", "THIS", "ARG", "LCL"} {
		e.line("@LCL")
		e.line("AM=M-1")
		e.line("D=M")
		e.line("@%s", ptr)
		e.line("M=D")
	}

	e.line("@%s", scratch)
	e.line("A=M")
	e.line("0;JMP")
}

// Bootstrap emits SP=256 followed by a regular call to entry. It must come
// before any unit's output.
func (e *Emitter) Bootstrap(entry string) {
	e.comment("bootstrap")
	e.line("@%d", stackBase)
	e.line("D=A")
	e.line("@SP")
	e.line("M=D")
	e.Call(entry, 0)
}
