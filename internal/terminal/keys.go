package terminal

// KeyKind identifies what KeyDecoder.Feed decoded from raw input.
type KeyKind int

const (
	// KeyNone means the byte was consumed internally (e.g. mid escape
	// sequence) and produced no editor action yet.
	KeyNone KeyKind = iota
	KeyRune
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyInterrupt // Ctrl-C
	KeyEOF       // Ctrl-D
)

const (
	ctrlC = 0x03
	ctrlD = 0x04
	bs    = 0x08
	del   = 0x7F
	esc   = 0x1B
	cr    = 0x0D
	lf    = 0x0A
)

// KeyDecoder turns a raw byte stream into KeyKind events, buffering the
// `ESC [ <letter>` three-byte escape sequence form; any other byte
// following ESC is a dropped, unrecognized sequence.
type KeyDecoder struct {
	escState int // 0 = idle, 1 = saw ESC, 2 = saw ESC [
}

// Feed consumes one raw byte and returns the decoded key (KeyNone if the
// byte was absorbed into an in-progress escape sequence), plus the rune for
// KeyRune events.
func (d *KeyDecoder) Feed(b byte) (KeyKind, rune) {
	switch d.escState {
	case 1:
		if b == '[' {
			d.escState = 2
			return KeyNone, 0
		}
		d.escState = 0
		return KeyNone, 0
	case 2:
		d.escState = 0
		switch b {
		case 'A':
			return KeyUp, 0
		case 'B':
			return KeyDown, 0
		case 'C':
			return KeyRight, 0
		case 'D':
			return KeyLeft, 0
		default:
			return KeyNone, 0
		}
	}

	switch b {
	case esc:
		d.escState = 1
		return KeyNone, 0
	case ctrlC:
		return KeyInterrupt, 0
	case ctrlD:
		return KeyEOF, 0
	case bs, del:
		return KeyBackspace, 0
	case cr, lf:
		return KeyEnter, 0
	}

	if b >= 0x20 && b < 0x7F {
		return KeyRune, rune(b)
	}

	return KeyNone, 0
}
