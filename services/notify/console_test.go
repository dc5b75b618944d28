package notifysvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, "masomo")

	c.Success("Quiz created")
	c.Error("Title is required")

	assert.Equal(t, "[masomo] ✓ Quiz created\n[masomo] ✗ Title is required\n", out.String())
	assert.Len(t, c.Toasts(""), 2)
	assert.Len(t, c.Toasts(LevelError), 1)
	last, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "Title is required", last.Msg)
}

func TestConsoleMock(t *testing.T) {
	c := NewConsoleMock()
	_, ok := c.Last()
	assert.False(t, ok)

	c.Success("ok")
	assert.Equal(t, []string{"ok"}, []string{c.Toasts(LevelSuccess)[0].Msg})
}
