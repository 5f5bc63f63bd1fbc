package translator

import "fmt"

// Segment is one of the eight addressing modes push/pop operate through.
type Segment int

const (
	SegLocal Segment = iota
	SegArgument
	SegStatic
	SegConstant
	SegThis
	SegThat
	SegPointer
	SegTemp
)

const (
	tempBase      = 5     // temp i lives at RAM[5+i]
	tempSize      = 8     // R5..R12
	maxConstant   = 32767 // largest value an A-instruction can load
	staticSize    = 240 // RAM[16..255]
	stackBase     = 256
	stackEnd      = 2048
	maxArgs       = maxConstant - frameSize
	maxLocals     = stackEnd - stackBase - frameSize
	frameSize     = 5 // return address, LCL, ARG, THIS, THAT
	scratch       = "R13"
	bootstrapFile = "Bootstrap"
)

var segmentNames = [...]string{
	SegLocal:    "local",
	SegArgument: "argument",
	SegStatic:   "static",
	SegConstant: "constant",
	SegThis:     "this",
	SegThat:     "that",
	SegPointer:  "pointer",
	SegTemp:     "temp",
}

func (s Segment) String() string {
	if int(s) >= 0 && int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// base returns the symbol holding the segment's base address, for the four
// pointer-indirect segments.
func (s Segment) base() (string, bool) {
	switch s {
	case SegLocal:
		return "LCL", true
	case SegArgument:
		return "ARG", true
	case SegThis:
		return "THIS", true
	case SegThat:
		return "THAT", true
	}
	return "", false
}

// segmentOf maps a segment keyword token to its Segment.
func segmentOf(tt TokenType) (Segment, bool) {
	switch tt {
	case LOCAL:
		return SegLocal, true
	case ARGUMENT:
		return SegArgument, true
	case STATIC:
		return SegStatic, true
	case CONSTANT:
		return SegConstant, true
	case THIS:
		return SegThis, true
	case THAT:
		return SegThat, true
	case POINTER:
		return SegPointer, true
	case TEMP:
		return SegTemp, true
	}
	return 0, false
}

// offsetLimit returns the largest offset s can address.
func offsetLimit(s Segment) int {
	switch s {
	case SegPointer:
		return 1
	case SegTemp:
		return tempSize - 1
	case SegStatic:
		return staticSize - 1
	}
	return maxConstant
}

// rangeText renders 0..max the way error messages quote it.
func rangeText(max int) string {
	if max == 1 {
		return "0 or 1"
	}
	return fmt.Sprintf("0..%d", max)
}

// checkOffset validates an offset against the segment's addressable range.
func checkOffset(s Segment, n int) error {
	limit := offsetLimit(s)
	switch {
	case s == SegConstant && n > limit:
		return fmt.Errorf("constant %d exceeds %d", n, limit)
	case n < 0:
		return fmt.Errorf("negative offset %d", n)
	case n > limit:
		return fmt.Errorf("%s offset must be %s, not %d", s, rangeText(limit), n)
	}
	return nil
}
