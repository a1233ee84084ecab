// Package shell is a line-oriented front end for the report client. It
// stands in for a browser page: notifications are printed inline and the
// report area is redrawn whenever the server returns a new report.
package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

var rule = strings.Repeat("-", 60)

// Console writes notifications and report text to a terminal.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	current string
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify prints message on its own line prefixed with "! ".
func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "! %s\n", message)
}

// SetText replaces the report area and redraws it.
func (c *Console) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = text
	c.draw()
}

// Show redraws the current report area.
func (c *Console) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == "" {
		fmt.Fprintln(c.out, "(no report)")
		return
	}
	c.draw()
}

// Text returns the report currently displayed.
func (c *Console) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Console) draw() {
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, strings.TrimRight(c.current, "\n"))
	fmt.Fprintln(c.out, rule)
}
