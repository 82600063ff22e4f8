// Package analyzer classifies a textual adapter line into an annotation
// record: AT/ST command, OBD-II/UDS-KWP request or response, ISO-TP
// multi-frame progress, negative response, or adapter status line.
package analyzer

// Direction tags an Annotation as describing a line sent to, or received
// from, the adapter.
type Direction int

const (
	// Outgoing annotates a line the user sent.
	Outgoing Direction = iota
	// Incoming annotates a line received from the adapter.
	Incoming
)

// Severity distinguishes routine annotations from warnings raised by
// protocol violations (orphan CF, sequence error) that the spec requires be
// surfaced but never treated as fatal.
type Severity int

const (
	// Normal is an ordinary annotation.
	Normal Severity = iota
	// Warning marks a non-fatal protocol violation.
	Warning
)

// Annotation is a headline plus ordered detail lines produced for one
// byte-line. Annotations are ephemeral: produced, rendered, discarded.
type Annotation struct {
	Direction Direction
	Severity  Severity
	Headline  string
	Details   []string
}
