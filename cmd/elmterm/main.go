// Command elmterm is an interactive diagnostic terminal for OBD-II/UDS/KWP
// adapters speaking the ELM327/STN AT dialect over a serial or TCP
// transport.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/term"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/doismellburning/elmterm/internal/config"
	"github.com/doismellburning/elmterm/internal/elmlog"
	"github.com/doismellburning/elmterm/internal/history"
	"github.com/doismellburning/elmterm/internal/terminal"
	"github.com/doismellburning/elmterm/internal/theme"
	"github.com/doismellburning/elmterm/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	var timeout = pflag.Float64P("timeout", "t", 12, "Connect timeout, seconds")
	var prompt = pflag.StringP("prompt", "p", "> ", "REPL prompt")
	var terminatorSpec = pflag.String("terminator", "cr", "Bytes appended on send: cr, lf, crlf, none, hex:<HEX>, or a literal string")
	var historyPath = pflag.String("history", "~/.elmterm.history", "History file path")
	var historyDepth = pflag.Int("history-depth", 500, "Max retained history entries")
	var configPath = pflag.String("config", "~/.elmterm.json", "JSON preferences file")
	var themeFlag = pflag.String("theme", "light", "Color palette: light or dark")
	var hexdump = pflag.Bool("hexdump", false, "Also print hex+ASCII dumps")
	var plain = pflag.Bool("plain", false, "Disable the protocol analyzer")
	var timestamps = pflag.Bool("timestamps", false, "Prefix each line with ISO-8601 time")
	var logLevel = pflag.String("log-level", "info", "Ambient log verbosity: debug, info, warn, error")
	var help = pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Interactive diagnostic terminal for ELM327/STN OBD-II adapters.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <connection-url>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  connection-url   tty://<baud>/<device-path>  or  tcp://<host>:<port>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}

	elmlog.SetLevel(*logLevel)

	if pflag.NArg() != 1 {
		pflag.Usage()
		return 1
	}
	var connURL = pflag.Arg(0)

	var cfgFile, cfgErr = config.Load(history.ExpandHome(*configPath))
	if cfgErr != nil {
		elmlog.Logger.Warn("ignoring unreadable config file", "path", *configPath, "error", cfgErr)
	}

	var merged = config.Resolve(
		config.Merged{Theme: *themeFlag, HistoryPath: *historyPath, HistoryDepth: *historyDepth},
		cfgFile,
		*themeFlag, pflag.CommandLine.Changed("theme"),
		*historyPath, pflag.CommandLine.Changed("history"),
		*historyDepth, pflag.CommandLine.Changed("history-depth"),
	)

	var terminatorBytes, termErr = transport.ParseTerminator(*terminatorSpec)
	if termErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", termErr)
		return 1
	}

	var h = history.New(history.ExpandHome(merged.HistoryPath), merged.HistoryDepth)
	if err := h.Load(); err != nil {
		elmlog.Logger.Warn("history load failed", "path", merged.HistoryPath, "error", err)
	}

	var tty, ttyErr = term.Open("/dev/tty", term.RawMode)
	if ttyErr != nil {
		fmt.Fprintf(os.Stderr, "Error: opening controlling terminal: %v\n", ttyErr)
		return 1
	}
	defer tty.Restore()
	defer tty.Close()

	var engine, engineErr = terminal.New(terminal.Config{
		ConnURL:     connURL,
		DialTimeout: time.Duration(*timeout * float64(time.Second)),
		Prompt:      *prompt,
		Terminator:  terminatorBytes,
		Theme:       theme.Parse(merged.Theme),
		Hexdump:     *hexdump,
		Plain:       *plain,
		Timestamps:  *timestamps,
		History:     h,
		In:          tty,
		Out:         tty,
	})
	if engineErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", engineErr)
		return 1
	}
	defer engine.Close()

	signal.Ignore(unix.SIGPIPE)

	var sigCh = make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		elmlog.Logger.Info("received interrupt, shutting down")
		engine.Close()
	}()

	if err := engine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := h.Save(); err != nil {
		elmlog.Logger.Warn("history save failed", "error", err)
	}

	return 0
}
