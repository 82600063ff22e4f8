package analyzer

import (
	"fmt"
	"strings"

	"github.com/doismellburning/elmterm/internal/hexcodec"
	"github.com/doismellburning/elmterm/internal/isotp"
	"github.com/doismellburning/elmterm/internal/tables"
)

// Analyzer classifies outgoing and incoming adapter lines into annotations.
// It owns the ISO-TP reassembly state for one adapter session; reset it (via
// Reset) whenever the session reconnects, per the design notes' scoping
// requirement.
type Analyzer struct {
	reassembler isotp.Reassembler
}

// Reset clears any in-flight ISO-TP reassembly. Call on session reconnect.
func (a *Analyzer) Reset() {
	a.reassembler.Reset()
}

// AnnotateOutgoing classifies a line the user is about to send. Returns nil
// if no annotation applies.
func (a *Analyzer) AnnotateOutgoing(line string) *Annotation {
	var upper = strings.ToUpper(strings.TrimSpace(line))

	if strings.HasPrefix(upper, "AT") {
		return atCommandAnnotation(upper)
	}
	if strings.HasPrefix(upper, "ST") {
		return stCommandAnnotation(upper)
	}

	var b = hexcodec.ParseStrict(line)
	if len(b) > 0 {
		return requestAnnotation(b)
	}

	return nil
}

// AnnotateIncoming classifies a line received from the adapter. Returns nil
// if no annotation applies. This method is total: it never panics on any
// input string.
func (a *Analyzer) AnnotateIncoming(line string) *Annotation {
	var upper = strings.ToUpper(strings.TrimSpace(line))

	if strings.Contains(upper, "NO DATA") {
		return &Annotation{
			Direction: Incoming,
			Headline:  "Adapter status",
			Details:   []string{"No ECU replied to this request"},
		}
	}
	if strings.Contains(upper, "SEARCHING") {
		return &Annotation{
			Direction: Incoming,
			Headline:  "Adapter status",
			Details:   []string{"Adapter is still trying to lock on a protocol"},
		}
	}
	if upper == "OK" {
		return &Annotation{
			Direction: Incoming,
			Headline:  "Adapter acknowledged command",
		}
	}

	var b = hexcodec.ParseResponse(line)
	if b != nil && len(b) >= 2 {
		return a.responseAnnotation(b)
	}

	return nil
}

func atCommandAnnotation(upper string) *Annotation {
	for _, key := range tables.ATKeysByLength {
		if strings.HasPrefix(upper, key) {
			return &Annotation{
				Direction: Outgoing,
				Headline:  fmt.Sprintf("ELM adapter command %s", key),
				Details:   []string{tables.ATCommands[key]},
			}
		}
	}
	return &Annotation{
		Direction: Outgoing,
		Headline:  "ELM adapter command",
	}
}

func stCommandAnnotation(upper string) *Annotation {
	for _, key := range tables.STKeysByLength {
		if strings.HasPrefix(upper, key) {
			return &Annotation{
				Direction: Outgoing,
				Headline:  fmt.Sprintf("STN command %s", key),
				Details:   []string{tables.STCommands[key]},
			}
		}
	}
	return &Annotation{
		Direction: Outgoing,
		Headline:  "STN command",
	}
}

func requestAnnotation(b []byte) *Annotation {
	var mode = b[0]
	var protocol, modeTable = protocolAndTable(mode)

	var details = []string{fmt.Sprintf("Hex: %s", hexcodec.Format(b))}
	if desc, ok := modeTable[mode]; ok {
		details = append(details, desc)
	}

	if protocol == "OBD-II" && len(b) >= 2 {
		var pid = b[1]
		if name, ok := tables.PIDNames[pid]; ok {
			details = append(details, fmt.Sprintf("PID %02X: %s", pid, name))
		} else {
			details = append(details, fmt.Sprintf("PID %02X", pid))
		}
	}

	return &Annotation{
		Direction: Outgoing,
		Headline:  fmt.Sprintf("%s request (mode %02X)", protocol, mode),
		Details:   details,
	}
}

func protocolAndTable(mode byte) (string, map[byte]string) {
	if mode <= 0x0F {
		return "OBD-II", tables.OBDModes
	}
	return "UDS/KWP", tables.UDSModes
}

func (a *Analyzer) responseAnnotation(b []byte) *Annotation {
	if b[0] == 0x7F && len(b) >= 3 {
		return negativeResponseAnnotation(b)
	}

	switch b[0] >> 4 {
	case 0x1, 0x2:
		return a.isotpAnnotation(b)
	default:
		return positiveResponseAnnotation(b)
	}
}

func negativeResponseAnnotation(b []byte) *Annotation {
	var service = b[1]
	var nrc = b[2]
	var nrcDesc, ok = tables.NRC[nrc]
	if !ok {
		nrcDesc = "Unknown NRC"
	}

	return &Annotation{
		Direction: Incoming,
		Headline:  fmt.Sprintf("Negative Response (NRC 0x%02X)", nrc),
		Details: []string{
			fmt.Sprintf("Service 0x%02X failed", service),
			nrcDesc,
		},
	}
}

func (a *Analyzer) isotpAnnotation(b []byte) *Annotation {
	var result = a.reassembler.Feed(b)

	switch result.Outcome {
	case isotp.FirstFrame:
		return &Annotation{
			Direction: Incoming,
			Headline:  "ISO-TP First Frame",
			Details:   []string{fmt.Sprintf("Progress: %d/%d", result.Buffered, result.Total)},
		}
	case isotp.OrphanCF:
		return &Annotation{
			Direction: Incoming,
			Severity:  Warning,
			Headline:  "ISO-TP orphaned Consecutive Frame",
			Details:   []string{"No First Frame is in progress"},
		}
	case isotp.SequenceError:
		return &Annotation{
			Direction: Incoming,
			Severity:  Warning,
			Headline:  "ISO-TP sequence error",
			Details:   []string{fmt.Sprintf("Expected sequence %d, got %d", result.Expected, result.Got)},
		}
	case isotp.Progress:
		return &Annotation{
			Direction: Incoming,
			Headline:  "ISO-TP Consecutive Frame",
			Details:   []string{fmt.Sprintf("Progress: %d/%d", result.Buffered, result.Total)},
		}
	case isotp.Complete:
		return completeMessageAnnotation(result.Message)
	default:
		return nil
	}
}

// completeMessageAnnotation inspects a fully reassembled ISO-TP message for
// the VIN response shape (mode 0x49, PID 0x02) before falling back to a
// generic complete-message annotation.
func completeMessageAnnotation(m []byte) *Annotation {
	if len(m) >= 3 && m[0] == 0x49 && m[1] == 0x02 {
		var vin = strings.TrimRight(hexcodec.ASCII(m[3:]), ".")
		return &Annotation{
			Direction: Incoming,
			Headline:  "VIN response",
			Details: []string{
				fmt.Sprintf("Hex: %s", hexcodec.Format(m)),
				fmt.Sprintf("VIN: %s", vin),
			},
		}
	}

	return &Annotation{
		Direction: Incoming,
		Headline:  "ISO-TP message complete",
		Details: []string{
			fmt.Sprintf("Hex: %s", hexcodec.Format(m)),
			fmt.Sprintf("ASCII: %s", hexcodec.ASCII(m)),
		},
	}
}

func positiveResponseAnnotation(b []byte) *Annotation {
	var mode = b[0] & 0x3F
	var pid = b[1]
	var payload = b[2:]
	var protocol, modeTable = protocolAndTable(mode)

	var details = []string{
		fmt.Sprintf("Hex: %s", hexcodec.Format(b)),
		fmt.Sprintf("ASCII: %s", hexcodec.ASCII(b)),
	}

	if desc, ok := modeTable[mode]; ok {
		details = append(details, fmt.Sprintf("Mode %02X: %s", mode, desc))
	}

	if protocol == "OBD-II" && isDTCMode(mode) {
		var codes = decodeDTCList(b[1:])
		if len(codes) > 0 {
			details = append(details, fmt.Sprintf("DTC: %s", strings.Join(codes, ", ")))
		}
	} else if value, ok := formatPID(pid, payload); ok {
		var name = tables.PIDNames[pid]
		if name == "" {
			name = fmt.Sprintf("PID %02X", pid)
		}
		details = append(details, fmt.Sprintf("%s: %s", name, value))
	}

	return &Annotation{
		Direction: Incoming,
		Headline:  fmt.Sprintf("%s response", protocol),
		Details:   details,
	}
}
