package analyzer

import "fmt"

// dtcCategory maps the top two bits of a DTC's first byte to its SAE J2012
// category letter.
func dtcCategory(firstByte byte) byte {
	switch firstByte >> 6 {
	case 0:
		return 'P'
	case 1:
		return 'C'
	case 2:
		return 'B'
	default:
		return 'U'
	}
}

// decodeDTC renders a two-byte DTC pair as e.g. "P0301".
func decodeDTC(hi, lo byte) string {
	var category = dtcCategory(hi)
	var digit1 = (hi >> 4) & 0x03
	var digit2 = hi & 0x0F
	var digit3 = lo >> 4
	var digit4 = lo & 0x0F
	return fmt.Sprintf("%c%d%X%X%X", category, digit1, digit2, digit3, digit4)
}

// decodeDTCList decodes a sequence of DTC byte pairs into their textual
// codes. A trailing unpaired byte is ignored. "0000" pairs (no DTC present)
// are skipped.
func decodeDTCList(payload []byte) []string {
	var codes []string
	for i := 0; i+1 < len(payload); i += 2 {
		if payload[i] == 0 && payload[i+1] == 0 {
			continue
		}
		codes = append(codes, decodeDTC(payload[i], payload[i+1]))
	}
	return codes
}

// isDTCMode reports whether mode is one of the OBD-II modes whose response
// payload is a list of DTCs rather than PID-keyed data.
func isDTCMode(mode byte) bool {
	switch mode {
	case 0x03, 0x07, 0x0A:
		return true
	default:
		return false
	}
}
