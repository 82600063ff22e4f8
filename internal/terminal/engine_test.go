package terminal

import (
	"bytes"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doismellburning/elmterm/internal/history"
	"github.com/doismellburning/elmterm/internal/theme"
)

func newTestEngine(t *testing.T) (*Engine, net.Conn, *bytes.Buffer) {
	t.Helper()

	var serverConn, clientConn = net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })

	var h = history.New(filepath.Join(t.TempDir(), "hist"), 100)
	require.NoError(t, h.Load())

	var out bytes.Buffer
	var e = &Engine{
		conn:     clientConn,
		history:  h,
		out:      &out,
		palette:  theme.New(theme.Light),
		prompt:   "> ",
		term:     []byte{'\r'},
		clock:    time.Now,
		tsFormat: "%Y-%m-%dT%H:%M:%S%z",
		shutdown: make(chan struct{}),
	}
	e.analyzerEnabled.Store(true)

	return e, serverConn, &out
}

func Test_Engine_DispatchMeta_Help(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	var result = e.dispatchMeta(":help")
	assert.False(t, result.Quit)
	assert.NotEmpty(t, result.Lines)
}

func Test_Engine_DispatchMeta_BareQuitAndExit(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	assert.True(t, e.dispatchMeta("quit").Quit)
	assert.True(t, e.dispatchMeta("exit").Quit)
	assert.True(t, e.dispatchMeta(":quit").Quit)
}

func Test_Engine_DispatchMeta_AnalyzerToggle(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	e.dispatchMeta(":analyzer off")
	assert.False(t, e.analyzerEnabled.Load())
	e.dispatchMeta(":analyzer on")
	assert.True(t, e.analyzerEnabled.Load())
	e.dispatchMeta(":analyzer")
	assert.False(t, e.analyzerEnabled.Load())
}

func Test_Engine_DispatchMeta_UnknownCommand(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	var result = e.dispatchMeta(":bogus")
	require.Len(t, result.Lines, 1)
	assert.Contains(t, result.Lines[0], "unknown meta command")
}

func Test_Engine_DispatchMeta_HistoryEmpty(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	var result = e.dispatchMeta(":history")
	assert.Equal(t, []string{"(history is empty)"}, result.Lines)
}

func Test_Engine_DispatchMeta_HistoryListsEntries(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	require.NoError(t, e.history.Append("0100"))
	require.NoError(t, e.history.Append("ATZ"))

	var result = e.dispatchMeta(":history")
	require.Len(t, result.Lines, 2)
	assert.Contains(t, result.Lines[0], "0100")
	assert.Contains(t, result.Lines[1], "ATZ")
}

func Test_Engine_Send_ArmsEchoCell(t *testing.T) {
	var e, serverConn, out = newTestEngine(t)

	var readBuf = make([]byte, 32)
	var n int
	var readErr error
	var done = make(chan struct{})
	go func() {
		n, readErr = serverConn.Read(readBuf)
		close(done)
	}()

	e.send("0100")
	<-done

	require.NoError(t, readErr)
	assert.Equal(t, "0100\r", string(readBuf[:n]))
	assert.NotEmpty(t, out.String(), "outgoing annotation should have rendered")
	assert.True(t, e.echo.TryConsume("0100"), "send should arm the echo cell with the command")
}

func Test_Engine_HandleIncoming_SuppressesArmedEcho(t *testing.T) {
	var e, _, out = newTestEngine(t)

	e.echo.Arm("0100")
	var before = out.Len()
	e.handleIncoming("0100")
	assert.Equal(t, before, out.Len(), "echoed command line must not be rendered")

	// A genuine response line after the echo is still annotated.
	e.handleIncoming("41 00 BE 1F A8 13")
	assert.Greater(t, out.Len(), before)
}

func Test_Engine_SetTheme(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	e.setTheme("dark")
	assert.Equal(t, theme.New(theme.Dark), e.palette)
}

func Test_Engine_SendRaw_InvalidHex(t *testing.T) {
	var e, _, _ = newTestEngine(t)
	var lines = e.metaSendRaw([]string{"ZZ"})
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "invalid hex")
}
