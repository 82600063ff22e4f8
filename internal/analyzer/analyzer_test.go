package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Outgoing_ShowCurrentDataRequest(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateOutgoing("0100")
	require.NotNil(t, ann)
	assert.Equal(t, "OBD-II request (mode 01)", ann.Headline)
	assert.Contains(t, ann.Details, "Hex: 01 00")
	assert.Contains(t, ann.Details, "Show current data")
	assert.Contains(t, ann.Details, "PID 00")
}

func Test_Incoming_OBDResponse(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateIncoming("7E8 41 00 BE 1F A8 13")
	require.NotNil(t, ann)
	assert.Equal(t, "OBD-II response", ann.Headline)
	assert.Contains(t, ann.Details, "Hex: 41 00 BE 1F A8 13")
	assert.Contains(t, ann.Details, "ASCII: A.....")
	assert.Contains(t, ann.Details, "Mode 01: Show current data")
}

func Test_Incoming_NegativeResponse(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateIncoming("7E8 7F 10 12")
	require.NotNil(t, ann)
	assert.Equal(t, "Negative Response (NRC 0x12)", ann.Headline)
	assert.Contains(t, ann.Details, "Service 0x10 failed")
	assert.Contains(t, ann.Details, "Sub-function not supported")
}

func Test_Incoming_VINReassembly(t *testing.T) {
	var a Analyzer

	var ff = a.AnnotateIncoming("7E8 10 14 49 02 01 57 41 55")
	require.NotNil(t, ff)
	assert.Equal(t, "ISO-TP First Frame", ff.Headline)

	var cf1 = a.AnnotateIncoming("7E8 21 5A 5A 5A 38 54 38 42")
	require.NotNil(t, cf1)
	assert.Equal(t, "ISO-TP Consecutive Frame", cf1.Headline)

	var cf2 = a.AnnotateIncoming("7E8 22 41 30 33 34 33 37 34")
	require.NotNil(t, cf2)
	assert.Equal(t, "VIN response", cf2.Headline)
	assert.Contains(t, cf2.Details, "VIN: WAUZZZ8T8BA034374")
}

func Test_Incoming_OrphanCF(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateIncoming("7E8 21 AA BB")
	require.NotNil(t, ann)
	assert.Equal(t, Warning, ann.Severity)
	assert.Equal(t, "ISO-TP orphaned Consecutive Frame", ann.Headline)
}

func Test_Incoming_SequenceError(t *testing.T) {
	var a Analyzer
	a.AnnotateIncoming("7E8 10 14 49 02 01 57 41 55")
	var ann = a.AnnotateIncoming("7E8 22 5A 5A 5A 38 54 38 42")
	require.NotNil(t, ann)
	assert.Equal(t, Warning, ann.Severity)
	assert.Equal(t, "Expected sequence 1, got 2", ann.Details[0])
}

func Test_Incoming_NoDataNotDecodedAsHex(t *testing.T) {
	var a Analyzer
	// "NO DATA" must never fall through to hex decoding even though "DA",
	// "AD" etc. could accidentally look hex-ish; first-match-wins ordering
	// must win here.
	var ann = a.AnnotateIncoming("NO DATA")
	require.NotNil(t, ann)
	assert.Equal(t, "Adapter status", ann.Headline)
}

func Test_Incoming_Searching(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateIncoming("SEARCHING...")
	require.NotNil(t, ann)
	assert.Contains(t, ann.Details[0], "protocol")
}

func Test_Incoming_OK(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateIncoming("OK")
	require.NotNil(t, ann)
	assert.Equal(t, "Adapter acknowledged command", ann.Headline)
}

func Test_AT_LongestPrefixWins(t *testing.T) {
	var a Analyzer
	var ann = a.AnnotateOutgoing("ATSP0")
	require.NotNil(t, ann)
	assert.Equal(t, "ELM adapter command ATSP0", ann.Headline)
}

func Test_DTCDecoding(t *testing.T) {
	var a Analyzer
	// 43 (mode 03 positive response) 01 33 = P0133
	var ann = a.AnnotateIncoming("43 01 33")
	require.NotNil(t, ann)
	assert.Contains(t, ann.Details, "DTC: P0133")
}

// Property: OBD-II / UDS classification is determined solely by
// mode <= 0x0F on the first post-header byte.
func Test_Property_ProtocolClassification(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var mode = rapid.Byte().Draw(t, "mode")
		var rest = rapid.SliceOfN(rapid.Byte(), 0, 6).Draw(t, "rest")

		var a Analyzer
		var line = formatHexLine(append([]byte{mode}, rest...))
		var ann = a.AnnotateOutgoing(line)

		require.NotNil(t, ann)
		if mode <= 0x0F {
			assert.Contains(t, ann.Headline, "OBD-II")
		} else {
			assert.Contains(t, ann.Headline, "UDS/KWP")
		}
	})
}

// Property: the analyzer never panics on arbitrary input.
func Test_Property_Total(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var line = rapid.String().Draw(t, "line")
		var a Analyzer
		assert.NotPanics(t, func() {
			a.AnnotateOutgoing(line)
		})
		assert.NotPanics(t, func() {
			a.AnnotateIncoming(line)
		})
	})
}

func formatHexLine(b []byte) string {
	var out = make([]byte, 0, len(b)*2)
	const hexDigits = "0123456789ABCDEF"
	for _, c := range b {
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0F])
	}
	return string(out)
}
