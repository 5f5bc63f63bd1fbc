package cpu

// Hack keyboard codes for keys without a printable character. Printable keys
// use their ASCII code.
const (
	KeyNewline   = 128
	KeyBackspace = 129
	KeyLeft      = 130
	KeyUp        = 131
	KeyRight     = 132
	KeyDown      = 133
	KeyHome      = 134
	KeyEnd       = 135
	KeyPageUp    = 136
	KeyPageDown  = 137
	KeyInsert    = 138
	KeyDelete    = 139
	KeyEscape    = 140
	KeyF1        = 141 // F1..F12 are 141..152
)

// TerminalKey decodes the first key in a chunk of raw terminal input and
// returns its Hack code and how many bytes it used. A zero code means the
// bytes do not map to a key.
func TerminalKey(b []byte) (code uint16, n int) {
	if len(b) == 0 {
		return 0, 0
	}
	switch c := b[0]; {
	case c == '\r' || c == '\n':
		return KeyNewline, 1
	case c == 0x7F || c == 0x08:
		return KeyBackspace, 1
	case c == 0x1B:
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return KeyUp, 3
			case 'B':
				return KeyDown, 3
			case 'C':
				return KeyRight, 3
			case 'D':
				return KeyLeft, 3
			case 'H':
				return KeyHome, 3
			case 'F':
				return KeyEnd, 3
			}
			// ESC [ n ~
			if len(b) >= 4 && b[3] == '~' {
				switch b[2] {
				case '2':
					return KeyInsert, 4
				case '3':
					return KeyDelete, 4
				case '5':
					return KeyPageUp, 4
				case '6':
					return KeyPageDown, 4
				}
			}
		}
		return KeyEscape, 1
	case c >= 0x20 && c < 0x7F:
		return uint16(c), 1
	}
	return 0, 1
}
