package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/strftime"

	"github.com/doismellburning/elmterm/internal/analyzer"
	"github.com/doismellburning/elmterm/internal/hexcodec"
)

const (
	eraseLine    = "\r\x1b[K"
	clearAndHome = "\x1b[2J\x1b[H"
)

// render implements the redraw protocol from the design notes: clear the
// current line, print the new lines, then (if the editor is mid-command)
// reprint the prompt and buffer and walk the cursor back to its logical
// position. out and the editor snapshot are read under renderMu so prompt
// redraws never interleave with annotation output.
func (e *Engine) render(lines []string) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	var b strings.Builder
	b.WriteString(eraseLine)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}

	var snap = e.editor.Snapshot()
	if snap.Active {
		b.WriteString(e.prompt)
		b.WriteString(snap.Text)
		if back := len(snap.Text) - snap.Cursor; back > 0 {
			fmt.Fprintf(&b, "\x1b[%dD", back)
		}
	}

	io.WriteString(e.out, b.String())
}

func (e *Engine) clearScreen() {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	io.WriteString(e.out, clearAndHome)
}

// renderAnnotation formats an Annotation into the lines passed to render,
// applying the palette style for its direction/severity and, if enabled,
// a timestamp prefix and raw hexdump.
func (e *Engine) renderAnnotation(a *analyzer.Annotation, raw string) {
	if a == nil {
		return
	}

	var style = e.styleFor(a)
	var lines []string

	var headline = a.Headline
	if e.timestamps {
		headline = e.timestamp() + " " + headline
	}
	lines = append(lines, style.Render(headline))
	for _, d := range a.Details {
		lines = append(lines, style.Render("  "+d))
	}
	if e.hexdump && raw != "" {
		lines = append(lines,
			e.palette.Detail.Render("  hex: "+hexcodec.Format([]byte(raw))),
			e.palette.Detail.Render("  ascii: "+hexcodec.ASCII([]byte(raw))),
		)
	}

	e.render(lines)
}

// styleStatusLines applies the status style to meta-command output (:help,
// :history, :analyzer, :theme, :save, :reconnect, and error replies), so it
// reads visually distinct from adapter traffic annotations.
func (e *Engine) styleStatusLines(lines []string) []string {
	var out = make([]string, len(lines))
	for i, l := range lines {
		out[i] = e.palette.Status.Render(l)
	}
	return out
}

func (e *Engine) styleFor(a *analyzer.Annotation) interface {
	Render(...string) string
} {
	if a.Severity == analyzer.Warning {
		return e.palette.Warning
	}
	if a.Direction == analyzer.Outgoing {
		return e.palette.Outgoing
	}
	return e.palette.Incoming
}

func (e *Engine) timestamp() string {
	var formatted, _ = strftime.Format(e.tsFormat, e.clock())
	return formatted
}
