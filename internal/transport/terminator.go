package transport

import (
	"fmt"
	"strings"

	"github.com/doismellburning/elmterm/internal/hexcodec"
)

// ParseTerminator implements the terminator grammar from the specification:
// named forms for CR/LF/CRLF/none, a "hex:<HEX>" form for arbitrary octets,
// and literal UTF-8 bytes of the argument for anything else.
func ParseTerminator(spec string) ([]byte, error) {
	switch strings.ToLower(spec) {
	case "cr", "\\r", "carriage-return":
		return []byte{0x0D}, nil
	case "lf", "\\n":
		return []byte{0x0A}, nil
	case "crlf", "\\r\\n":
		return []byte{0x0D, 0x0A}, nil
	case "none":
		return []byte{}, nil
	}

	if rest, ok := strings.CutPrefix(strings.ToLower(spec), "hex:"); ok {
		var b = hexcodec.ParseStrict(spec[len(spec)-len(rest):])
		if b == nil {
			return nil, fmt.Errorf("transport: invalid hex terminator %q", spec)
		}
		return b, nil
	}

	return []byte(spec), nil
}
