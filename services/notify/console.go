package notifysvc

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Toast levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Toast is one transient notification.
type Toast struct {
	Level string
	Msg   string
	At    time.Time
}

// Console prints toasts to a terminal and keeps them for later inspection.
type Console struct {
	out           io.Writer
	prefix        string
	disableOutput bool

	mu     sync.Mutex
	toasts []Toast
}

func NewConsole(out io.Writer, appName string) *Console {
	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}
	return &Console{out: out, prefix: prefix}
}

// NewConsoleMock records toasts without printing them.
func NewConsoleMock() *Console {
	return &Console{disableOutput: true}
}

func (c *Console) push(level, msg string) {
	c.mu.Lock()
	c.toasts = append(c.toasts, Toast{Level: level, Msg: msg, At: time.Now()})
	c.mu.Unlock()

	if c.disableOutput || c.out == nil {
		return
	}
	mark := "✓"
	if level == LevelError {
		mark = "✗"
	}
	_, _ = fmt.Fprintf(c.out, "%s%s %s\n", c.prefix, mark, msg)
}

func (c *Console) Success(msg string) { c.push(LevelSuccess, msg) }
func (c *Console) Error(msg string)   { c.push(LevelError, msg) }

// Toasts returns the recorded toasts of `level` (all of them when empty).
func (c *Console) Toasts(level string) []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Toast
	for _, t := range c.toasts {
		if level == "" || t.Level == level {
			out = append(out, t)
		}
	}
	return out
}

// Last returns the latest toast, if any.
func (c *Console) Last() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.toasts) == 0 {
		return Toast{}, false
	}
	return c.toasts[len(c.toasts)-1], true
}
