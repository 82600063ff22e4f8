package terminal

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaResult is what dispatching a `:`-prefixed meta command (or bare
// "quit"/"exit") produced: lines to display, and whether it requests
// shutdown.
type MetaResult struct {
	Lines []string
	Quit  bool
}

var metaHelp = []string{
	":help               Print this list",
	":history [n]        Print last n history entries (default 20)",
	":clear              Clear screen and home cursor",
	":analyzer [on|off]  Enable, disable, or toggle annotation",
	":save               Persist history immediately",
	":theme [light|dark] Switch the color palette",
	":send-raw <hex>     Send raw hex bytes bypassing command classification",
	":reconnect          Re-dial the transport",
	":quit / :exit       Request shutdown",
}

// dispatchMeta handles a line already known to be a meta command: either
// `:`-prefixed, or the bare "quit"/"exit" spellings.
func (e *Engine) dispatchMeta(line string) MetaResult {
	var trimmed = strings.TrimSpace(line)
	var lower = strings.ToLower(trimmed)

	if lower == "quit" || lower == "exit" {
		return MetaResult{Quit: true}
	}

	var body = strings.TrimPrefix(trimmed, ":")
	var fields = strings.Fields(body)
	if len(fields) == 0 {
		return MetaResult{Lines: []string{"Error: empty meta command"}}
	}

	var cmd = strings.ToLower(fields[0])
	var args = fields[1:]

	switch cmd {
	case "help":
		return MetaResult{Lines: metaHelp}
	case "history":
		return MetaResult{Lines: e.metaHistory(args)}
	case "clear":
		e.clearScreen()
		return MetaResult{}
	case "analyzer":
		return MetaResult{Lines: []string{e.metaAnalyzer(args)}}
	case "save":
		if err := e.history.Save(); err != nil {
			return MetaResult{Lines: []string{fmt.Sprintf("Error: saving history: %v", err)}}
		}
		return MetaResult{Lines: []string{"History saved"}}
	case "theme":
		return MetaResult{Lines: []string{e.metaTheme(args)}}
	case "send-raw":
		return MetaResult{Lines: e.metaSendRaw(args)}
	case "reconnect":
		return MetaResult{Lines: e.metaReconnect()}
	case "quit", "exit":
		return MetaResult{Quit: true}
	default:
		return MetaResult{Lines: []string{fmt.Sprintf("Error: unknown meta command %q", fields[0])}}
	}
}

func (e *Engine) metaHistory(args []string) []string {
	var n = 20
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil && parsed > 0 {
			n = parsed
		}
	}

	var entries = e.history.Last(n)
	var base = len(e.history.Entries()) - len(entries)
	var lines = make([]string, 0, len(entries))
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%4d  %s", base+i+1, entry))
	}
	if len(lines) == 0 {
		lines = []string{"(history is empty)"}
	}
	return lines
}

func (e *Engine) metaAnalyzer(args []string) string {
	if len(args) == 0 {
		e.analyzerEnabled.Store(!e.analyzerEnabled.Load())
	} else {
		switch strings.ToLower(args[0]) {
		case "on":
			e.analyzerEnabled.Store(true)
		case "off":
			e.analyzerEnabled.Store(false)
		default:
			return fmt.Sprintf("Error: unrecognized argument %q", args[0])
		}
	}
	if e.analyzerEnabled.Load() {
		return "Analyzer enabled"
	}
	return "Analyzer disabled"
}

func (e *Engine) metaTheme(args []string) string {
	if len(args) == 0 {
		return "Error: usage :theme [light|dark]"
	}
	e.setTheme(args[0])
	return fmt.Sprintf("Theme set to %s", args[0])
}

func (e *Engine) metaSendRaw(args []string) []string {
	if len(args) == 0 {
		return []string{"Error: usage :send-raw <hex>"}
	}
	var text = strings.Join(args, "")
	return e.sendRaw(text)
}

func (e *Engine) metaReconnect() []string {
	if err := e.reconnect(); err != nil {
		return []string{fmt.Sprintf("Error: reconnect failed: %v", err)}
	}
	return []string{"Reconnected"}
}
