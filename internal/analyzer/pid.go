package analyzer

import "fmt"

// pidFormatter renders a PID's data bytes (A, B, ... following the PID byte
// itself) as a human-readable value. Only PIDs with a known formula get one;
// others are identified by name/number alone.
type pidFormatter func(data []byte) (string, bool)

// pidFormatters holds the canonical formulas required by the specification.
var pidFormatters = map[byte]pidFormatter{
	0x05: func(data []byte) (string, bool) {
		if len(data) < 1 {
			return "", false
		}
		return fmt.Sprintf("%d °C", int(data[0])-40), true
	},
	0x0C: func(data []byte) (string, bool) {
		if len(data) < 2 {
			return "", false
		}
		var rpm = (int(data[0])<<8 + int(data[1])) / 4
		return fmt.Sprintf("%d rpm", rpm), true
	},
	0x0D: func(data []byte) (string, bool) {
		if len(data) < 1 {
			return "", false
		}
		return fmt.Sprintf("%d km/h", int(data[0])), true
	},
	0x0F: func(data []byte) (string, bool) {
		if len(data) < 1 {
			return "", false
		}
		return fmt.Sprintf("%d °C", int(data[0])-40), true
	},
	0x11: func(data []byte) (string, bool) {
		if len(data) < 1 {
			return "", false
		}
		return fmt.Sprintf("%.1f %%", float64(data[0])*100/255), true
	},
	0x2F: func(data []byte) (string, bool) {
		if len(data) < 1 {
			return "", false
		}
		return fmt.Sprintf("%.1f %%", float64(data[0])*100/255), true
	},
}

// formatPID returns the formatted value for a PID given its data bytes, and
// whether a formula was known for it.
func formatPID(pid byte, data []byte) (string, bool) {
	var f, ok = pidFormatters[pid]
	if !ok {
		return "", false
	}
	return f(data)
}
