package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EchoCell_SuppressesExactEchoOnce(t *testing.T) {
	var c EchoCell
	c.Arm(" 0100 ")

	assert.True(t, c.TryConsume("0100"))
	// Subsequent duplicates are not suppressed.
	assert.False(t, c.TryConsume("0100"))
}

func Test_EchoCell_IsCaseAndWhitespaceInsensitive(t *testing.T) {
	var c EchoCell
	c.Arm("atz")
	assert.True(t, c.TryConsume("  ATZ  "))
}

func Test_EchoCell_UnrelatedLineNotConsumed(t *testing.T) {
	var c EchoCell
	c.Arm("0100")
	assert.False(t, c.TryConsume("41 00 BE"))
	// still armed, still matches the original command
	assert.True(t, c.TryConsume("0100"))
}

func Test_EchoCell_RearmOverwritesPending(t *testing.T) {
	var c EchoCell
	c.Arm("0100")
	c.Arm("ATZ")
	assert.False(t, c.TryConsume("0100"))
	assert.True(t, c.TryConsume("ATZ"))
}
