// Package transport dials the byte-oriented connection to an adapter: a
// serial TTY or a TCP socket, as named by a connection URL. It is the only
// place in the module that knows about either transport's wire details;
// everything above it sees a plain io.ReadWriteCloser.
package transport

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/term"
)

// Dial opens the transport named by rawURL. Recognized schemes:
//
//	tty://<baud>/<device-path>   e.g. tty://115200/dev/ttyUSB0
//	tcp://<host>:<port>
//
// timeout bounds the connection attempt; expiry surfaces as an error.
func Dial(rawURL string, timeout time.Duration) (Conn, error) {
	var u, err = url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid connection URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "tcp":
		return dialTCP(u, timeout)
	case "tty":
		return dialTTY(u)
	default:
		return nil, fmt.Errorf("transport: unrecognized scheme %q", u.Scheme)
	}
}

// Conn is the duplex byte stream the rest of the module consumes.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
}

func dialTCP(u *url.URL, timeout time.Duration) (Conn, error) {
	var conn, err = net.DialTimeout("tcp", u.Host, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: tcp dial %s: %w", u.Host, err)
	}
	return conn, nil
}

func dialTTY(u *url.URL) (Conn, error) {
	// tty://<baud>/<device-path>: Host carries the baud rate, Path the
	// device file, matching url.Parse's treatment of "tty://9600/dev/x"
	// as Host="9600", Path="/dev/x".
	var baud = 9600
	if u.Host != "" {
		var parsed, err = strconv.Atoi(u.Host)
		if err != nil {
			return nil, fmt.Errorf("transport: invalid baud rate %q: %w", u.Host, err)
		}
		baud = parsed
	}

	var device = u.Path
	if device == "" {
		return nil, fmt.Errorf("transport: tty:// URL is missing a device path")
	}

	var t, err = term.Open(device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("transport: opening serial port %s: %w", device, err)
	}

	if err := t.SetSpeed(baud); err != nil {
		t.Close()
		return nil, fmt.Errorf("transport: setting baud rate %d on %s: %w", baud, device, err)
	}

	return t, nil
}
