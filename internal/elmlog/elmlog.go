// Package elmlog provides the ambient structured logger for startup,
// shutdown, and transport-level status — distinct from the Analyzer's
// annotation stream, which goes through the terminal engine's own
// serialized output channel.
package elmlog

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide ambient logger.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// SetLevel parses one of "debug", "info", "warn", "error" (case
// insensitive); unrecognized values fall back to info.
func SetLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	Logger.SetLevel(parsed)
}
