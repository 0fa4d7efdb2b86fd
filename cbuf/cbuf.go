// SPDX-License-Identifier: GPL-2.0-or-later

// Package cbuf buffers console text and runs it line by line.
package cbuf

import (
	"log/slog"

	"deflight/cmd"
	"deflight/conlog"
)

// Efunc runs a line. It returns false if the line is not its business.
type Efunc func(*CommandBuffer, cmd.Arguments) (bool, error)

// CommandBuffer holds console text not yet executed. Lines end at a newline
// or an unquoted ';'. A "wait" line defers the rest to the next Execute.
type CommandBuffer struct {
	text      string
	wait      bool
	executors []Efunc
}

func (c *CommandBuffer) SetCommandExecutors(e []Efunc) {
	c.executors = e
}

func (c *CommandBuffer) AddText(text string) {
	c.text += text
}

// InsertText puts text in front of what is still buffered.
func (c *CommandBuffer) InsertText(text string) {
	c.text = text + "\n" + c.text
}

func (c *CommandBuffer) Empty() bool {
	return len(c.text) == 0
}

func (c *CommandBuffer) nextLine() string {
	i := 0
	quote := false
Loop:
	for ; i < len(c.text); i++ {
		switch c.text[i] {
		case '"':
			quote = !quote
		case ';':
			if !quote {
				break Loop
			}
		case '\n':
			break Loop
		}
	}
	line := c.text[:i]
	if i < len(c.text) {
		i++
	}
	c.text = c.text[i:]
	return line
}

// Execute runs buffered lines until the buffer is empty or a wait is hit.
// Errors are logged and do not stop the buffer.
func (c *CommandBuffer) Execute() {
	for len(c.text) != 0 {
		a := cmd.Parse(c.nextLine())
		if err := c.execute(a); err != nil {
			conlog.Printf("%s: %v\n", a.Argv(0), err)
		}
		if c.wait {
			c.wait = false
			return
		}
	}
}

func (c *CommandBuffer) execute(a cmd.Arguments) error {
	args := a.Args()
	if len(args) == 0 {
		return nil
	}
	if args[0].String() == "wait" {
		c.wait = true
		return nil
	}
	for _, e := range c.executors {
		if ok, err := e(c, a); err != nil {
			return err
		} else if ok {
			return nil
		}
	}
	name := args[0].String()
	slog.Warn("unknown command", slog.String("name", name))
	conlog.Printf("Unknown command \"%s\"\n", name)
	return nil
}
