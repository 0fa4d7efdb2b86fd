// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd holds the console commands.
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"deflight/conlog"
)

type Func func(a Arguments) error

type Commands map[string]Func

func New() Commands {
	c := make(Commands)
	c["cmdlist"] = c.printList
	return c
}

// Add registers f under the lower cased name.
func (c Commands) Add(name string, f Func) error {
	ln := strings.ToLower(name)
	if _, ok := c[ln]; ok {
		return fmt.Errorf("command %s already defined", ln)
	}
	c[ln] = f
	return nil
}

func (c Commands) Exists(name string) bool {
	_, ok := c[strings.ToLower(name)]
	return ok
}

func (c Commands) List() []string {
	cmds := make([]string, 0, len(c))
	for cmd := range c {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument. It returns false if
// there is no such command.
func (c Commands) Execute(a Arguments) (bool, error) {
	n := a.Args()
	if len(n) == 0 {
		return false, nil
	}
	f, ok := c[strings.ToLower(n[0].String())]
	if !ok {
		return false, nil
	}
	if err := f(a); err != nil {
		return false, err
	}
	return true, nil
}

func (c Commands) printList(a Arguments) error {
	part := a.Argv(1).String()
	count := 0
	for _, name := range c.List() {
		if strings.HasPrefix(name, part) {
			conlog.SafePrintf("  %s\n", name)
			count++
		}
	}
	if part == "" {
		conlog.SafePrintf("%v commands\n", count)
	} else {
		conlog.SafePrintf("%v commands beginning with \"%v\"\n", count, part)
	}
	return nil
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}
