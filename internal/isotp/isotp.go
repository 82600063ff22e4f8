// Package isotp implements the ISO 15765-2 multi-frame reassembly state
// machine that stitches First Frame / Consecutive Frame sequences into a
// single logical message. It is a stateful collaborator of the analyzer
// package: one Reassembler instance is scoped to a single adapter session and
// must be reset on reconnect.
package isotp

import "fmt"

// Outcome identifies what a Feed call produced.
type Outcome int

const (
	// None means the input wasn't a First Frame or Consecutive Frame at
	// all (caller should treat it as an ordinary response).
	None Outcome = iota
	// FirstFrame means a new reassembly began; Buffered and Total hold
	// (1, total).
	FirstFrame
	// OrphanCF means a Consecutive Frame arrived with no reassembly in
	// flight.
	OrphanCF
	// SequenceError means a Consecutive Frame's sequence number didn't
	// match the expected next value; the reassembly was reset to Idle.
	SequenceError
	// Progress means a Consecutive Frame was accepted and more are
	// expected.
	Progress
	// Complete means the final Consecutive Frame arrived; Message holds
	// the reassembled, length-truncated bytes.
	Complete
)

// Result is what Feed returns: which Outcome occurred, plus whichever of the
// following fields apply to that Outcome.
type Result struct {
	Outcome Outcome

	// Buffered, Total apply to FirstFrame and Progress.
	Buffered int
	Total    int

	// Expected, Got apply to SequenceError.
	Expected int
	Got      int

	// Message applies to Complete: the reassembled bytes, truncated to
	// the First Frame's declared total length.
	Message []byte
}

// Reassembler holds the in-flight ISO-TP reassembly state for one adapter
// session. The zero value is an idle reassembler ready to use.
type Reassembler struct {
	collecting   bool
	totalLength  int
	buffer       []byte
	nextSequence int
}

// Reset discards any in-flight reassembly, returning to Idle. Called on
// session reconnect per the scoping requirement in the design notes.
func (r *Reassembler) Reset() {
	r.collecting = false
	r.totalLength = 0
	r.buffer = nil
	r.nextSequence = 0
}

// Feed processes the classified first byte(s) of an incoming hex-byte
// sequence B, where B's upper nibble has already been determined by the
// caller to be 0x1 (First Frame) or 0x2 (Consecutive Frame). Feeding any
// other frame type is the caller's error, not this package's concern.
func (r *Reassembler) Feed(b []byte) Result {
	if len(b) == 0 {
		return Result{Outcome: None}
	}

	switch b[0] >> 4 {
	case 0x1:
		return r.feedFirstFrame(b)
	case 0x2:
		return r.feedConsecutiveFrame(b)
	default:
		return Result{Outcome: None}
	}
}

func (r *Reassembler) feedFirstFrame(b []byte) Result {
	if len(b) < 2 {
		return Result{Outcome: None}
	}

	// An FF while a prior reassembly is in flight silently resets and
	// overwrites it, per spec; this is called out as an open question in
	// the design notes rather than changed.
	var totalLength = (int(b[0]&0x0F) << 8) | int(b[1])
	var payload = b[2:]

	r.collecting = true
	r.totalLength = totalLength
	r.buffer = append([]byte(nil), payload...)
	r.nextSequence = 1

	return Result{
		Outcome:  FirstFrame,
		Buffered: 1,
		Total:    totalLength,
	}
}

func (r *Reassembler) feedConsecutiveFrame(b []byte) Result {
	if !r.collecting {
		return Result{Outcome: OrphanCF}
	}

	var seq = int(b[0] & 0x0F)
	if seq != r.nextSequence {
		var expected = r.nextSequence
		r.Reset()
		return Result{Outcome: SequenceError, Expected: expected, Got: seq}
	}

	if len(b) > 1 {
		r.buffer = append(r.buffer, b[1:]...)
	}
	r.nextSequence = (r.nextSequence + 1) % 16

	if len(r.buffer) >= r.totalLength {
		var message = append([]byte(nil), r.buffer[:r.totalLength]...)
		r.Reset()
		return Result{Outcome: Complete, Message: message}
	}

	return Result{
		Outcome:  Progress,
		Buffered: len(r.buffer),
		Total:    r.totalLength,
	}
}

// Collecting reports whether a reassembly is currently in flight.
func (r *Reassembler) Collecting() bool {
	return r.collecting
}

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case FirstFrame:
		return "first-frame"
	case OrphanCF:
		return "orphan-cf"
	case SequenceError:
		return "sequence-error"
	case Progress:
		return "progress"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
