// Package terminal implements the TerminalEngine: the concurrency
// scaffolding that interleaves a raw-mode line editor with annotated
// adapter traffic, echo-suppresses local command echoes, and serializes
// writes to both the transport and the controlling terminal.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doismellburning/elmterm/internal/analyzer"
	"github.com/doismellburning/elmterm/internal/elmlog"
	"github.com/doismellburning/elmterm/internal/hexcodec"
	"github.com/doismellburning/elmterm/internal/history"
	"github.com/doismellburning/elmterm/internal/lineframer"
	"github.com/doismellburning/elmterm/internal/theme"
	"github.com/doismellburning/elmterm/internal/transport"
)

// Config collects everything Engine needs to wire a session together.
type Config struct {
	ConnURL     string
	DialTimeout time.Duration
	Prompt      string
	Terminator  []byte
	Theme       theme.Name
	Hexdump     bool
	Plain       bool
	Timestamps  bool
	History     *history.History

	// In/Out are the controlling terminal's raw-mode input and the stream
	// redraws and annotations are written to; cmd/elmterm passes the
	// controlling terminal (/dev/tty) for both, and tests substitute their
	// own streams.
	In  io.Reader
	Out io.Writer
}

// Engine is one adapter session: a dialed transport, the protocol-aware
// decoding pipeline, and the raw-mode REPL.
type Engine struct {
	connMu sync.Mutex
	conn   transport.Conn

	readerDone chan error

	connURL     string
	dialTimeout time.Duration

	framer   lineframer.Framer
	analyzer analyzer.Analyzer
	editor   Editor
	echo     EchoCell
	writeQ   WriteQueue
	decoder  KeyDecoder

	history *history.History

	renderMu sync.Mutex
	out      io.Writer
	in       io.Reader

	palette theme.Palette
	prompt  string
	term    []byte

	analyzerEnabled atomic.Bool
	hexdump         bool
	plain           bool
	timestamps      bool

	clock    func() time.Time
	tsFormat string

	shutdown chan struct{}
	once     sync.Once
}

// New dials cfg.ConnURL and returns a ready-to-run Engine.
func New(cfg Config) (*Engine, error) {
	var conn, err = transport.Dial(cfg.ConnURL, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}

	var e = &Engine{
		conn:        conn,
		connURL:     cfg.ConnURL,
		dialTimeout: cfg.DialTimeout,
		history:     cfg.History,
		out:         cfg.Out,
		in:          cfg.In,
		palette:     theme.New(cfg.Theme),
		prompt:      cfg.Prompt,
		term:        cfg.Terminator,
		hexdump:     cfg.Hexdump,
		plain:       cfg.Plain,
		timestamps:  cfg.Timestamps,
		clock:       time.Now,
		tsFormat:    "%Y-%m-%dT%H:%M:%S%z",
		shutdown:    make(chan struct{}),
	}
	e.analyzerEnabled.Store(!cfg.Plain)

	return e, nil
}

// Run drives the session until shutdown: it starts the transport reader
// goroutine and then runs the REPL loop on the calling goroutine, returning
// when the REPL exits (EOF, :quit, or a fatal transport error).
func (e *Engine) Run() error {
	e.startReader()

	var replErr = e.replLoop()

	select {
	case err := <-e.readerDone:
		if err != nil && err != io.EOF {
			return err
		}
	default:
	}

	return replErr
}

func (e *Engine) requestShutdown() {
	e.once.Do(func() { close(e.shutdown) })
}

// startReader spawns a transport-reader goroutine bound to the engine's
// current conn, recording the channel it reports completion on so both Run
// and reconnect can wait for it.
func (e *Engine) startReader() {
	e.connMu.Lock()
	var conn = e.conn
	e.connMu.Unlock()

	var done = make(chan error, 1)
	e.readerDone = done
	go e.readLoop(conn, done)
}

// readLoop is the transport-reader activity: it blocks on Read, feeds
// complete lines to LineFramer, and dispatches each to handleIncoming. conn
// is the connection this particular goroutine owns; if it no longer matches
// e.conn by the time Read fails, the failure is the expected side effect of
// reconnect() closing the old conn out from under it, not a fatal error.
func (e *Engine) readLoop(conn transport.Conn, done chan<- error) {
	var buf = make([]byte, 4096)
	for {
		select {
		case <-e.shutdown:
			done <- nil
			return
		default:
		}

		var n, err = conn.Read(buf)
		if n > 0 {
			for _, line := range e.framer.Feed(buf[:n]) {
				e.handleIncoming(line)
			}
		}
		if err != nil {
			e.connMu.Lock()
			var superseded = conn != e.conn
			e.connMu.Unlock()
			if superseded {
				done <- nil
				return
			}

			e.render([]string{e.palette.Error.Render(fmt.Sprintf("Transport error: %v", err))})
			elmlog.Logger.Error("transport read failed", "url", e.connURL, "error", err)
			e.requestShutdown()
			done <- err
			return
		}
	}
}

// handleIncoming runs one adapter line through echo suppression and the
// Analyzer, rendering whatever annotation results.
func (e *Engine) handleIncoming(line string) {
	if e.echo.TryConsume(line) {
		return
	}

	var shown = line
	if e.timestamps {
		shown = e.timestamp() + " " + line
	}

	if !e.analyzerEnabled.Load() {
		e.render([]string{shown})
		return
	}

	var a = e.analyzer.AnnotateIncoming(line)
	if a == nil {
		e.render([]string{shown})
		return
	}
	e.renderAnnotation(a, line)
}

// replLoop is the REPL task: raw-byte reads drive the line editor; on Enter
// the composed command is dispatched.
func (e *Engine) replLoop() error {
	e.editor.SetHistory(e.history.Entries())
	e.editor.SetActive(true)

	var buf = make([]byte, 1)
	for {
		select {
		case <-e.shutdown:
			return nil
		default:
		}

		var n, err = e.in.Read(buf)
		if err != nil {
			return nil
		}
		if n == 0 {
			continue
		}

		var kind, r = e.decoder.Feed(buf[0])
		switch kind {
		case KeyRune:
			e.editor.Insert(r)
		case KeyBackspace:
			e.editor.Backspace()
		case KeyLeft:
			e.editor.Left()
		case KeyRight:
			e.editor.Right()
		case KeyUp:
			e.editor.Up()
		case KeyDown:
			e.editor.Down()
		case KeyInterrupt:
			e.editor.Reset()
		case KeyEOF:
			if e.editor.Snapshot().Text == "" {
				e.requestShutdown()
				return nil
			}
		case KeyEnter:
			var line = e.editor.Commit()
			if e.dispatchLine(line) {
				e.requestShutdown()
				return nil
			}
			e.editor.SetHistory(e.history.Entries())
		}

		e.render(nil)
	}
}

// dispatchLine handles one committed command line: meta commands are
// intercepted, everything else is sent. Returns true if shutdown was
// requested.
func (e *Engine) dispatchLine(line string) bool {
	var trimmed = strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	var lower = strings.ToLower(trimmed)
	if strings.HasPrefix(trimmed, ":") || lower == "quit" || lower == "exit" {
		// Meta commands are never recorded to history.
		var result = e.dispatchMeta(trimmed)
		if len(result.Lines) > 0 {
			e.render(e.styleStatusLines(result.Lines))
		}
		return result.Quit
	}

	e.send(trimmed)
	if err := e.history.Append(trimmed); err != nil {
		elmlog.Logger.Warn("history append failed", "error", err)
	}
	return false
}

// send transmits command, arming echo suppression and rendering the
// outgoing annotation first, per the ordering guarantee that an outgoing
// annotation precedes any later incoming annotation.
func (e *Engine) send(command string) {
	if e.analyzerEnabled.Load() {
		var a = e.analyzer.AnnotateOutgoing(command)
		e.renderAnnotation(a, command)
	}

	e.echo.Arm(command)
	e.writeQ.Enqueue(append([]byte(command), e.term...))

	e.connMu.Lock()
	var conn = e.conn
	e.connMu.Unlock()

	if err := e.writeQ.Drain(conn); err != nil {
		e.render([]string{e.palette.Error.Render(fmt.Sprintf("Write error: %v", err))})
		elmlog.Logger.Error("transport write failed", "url", e.connURL, "error", err)
		e.requestShutdown()
	}
}

// sendRaw implements :send-raw, bypassing AT/ST/mode classification but
// applying the same echo-suppression and annotation treatment as a normal
// send.
func (e *Engine) sendRaw(hexText string) []string {
	var b = hexcodec.ParseStrict(hexText)
	if b == nil {
		return []string{fmt.Sprintf("Error: invalid hex %q", hexText)}
	}
	e.send(hexcodec.Format(b))
	return nil
}

func (e *Engine) setTheme(name string) {
	e.palette = theme.New(theme.Parse(name))
}

// reconnect re-dials the same connection URL, resetting ISO-TP reassembly
// and echo-suppression state per the session-scoping requirement, and
// restarts the transport-reader goroutine against the new conn. Called only
// from the REPL goroutine via dispatchMeta.
func (e *Engine) reconnect() error {
	var conn, err = transport.Dial(e.connURL, e.dialTimeout)
	if err != nil {
		return err
	}

	e.connMu.Lock()
	var old = e.conn
	e.conn = conn
	e.connMu.Unlock()

	if old != nil {
		old.Close()
		// Wait for the superseded reader goroutine to notice and exit
		// before touching framer/echo, so nothing else is still writing
		// to them.
		<-e.readerDone
	}

	e.analyzer.Reset()
	e.framer.Reset()
	e.echo.Reset()

	e.startReader()
	return nil
}

// Close releases the transport connection.
func (e *Engine) Close() error {
	e.requestShutdown()

	e.connMu.Lock()
	var conn = e.conn
	e.connMu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}
