package terminal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteQueue_DrainWritesAndEmpties(t *testing.T) {
	var q WriteQueue
	q.Enqueue([]byte("0100"))
	q.Enqueue([]byte("\r"))

	var buf bytes.Buffer
	require.NoError(t, q.Drain(&buf))
	assert.Equal(t, "0100\r", buf.String())
	assert.Equal(t, 0, q.Len())
}

func Test_WriteQueue_DrainOnEmptyIsNoop(t *testing.T) {
	var q WriteQueue
	var buf bytes.Buffer
	require.NoError(t, q.Drain(&buf))
	assert.Empty(t, buf.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("boom")
}

func Test_WriteQueue_DrainErrorRequeuesData(t *testing.T) {
	var q WriteQueue
	q.Enqueue([]byte("0100"))

	var err = q.Drain(failingWriter{})
	require.Error(t, err)
	assert.Equal(t, 4, q.Len())
}
