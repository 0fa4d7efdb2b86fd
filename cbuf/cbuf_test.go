// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import (
	"testing"

	"deflight/cmd"
)

func TestWait(t *testing.T) {
	c := CommandBuffer{}
	runCount := 0
	c.SetCommandExecutors([]Efunc{
		func(cb *CommandBuffer, a cmd.Arguments) (bool, error) {
			runCount++
			return true, nil
		}})
	c.AddText("wait\n")
	c.AddText("test\n")
	c.AddText("test\n")
	c.AddText("wait\n")
	c.AddText("test\n")
	c.Execute()
	if runCount != 0 {
		t.Errorf("runCount=%v, want %v", runCount, 0)
	}
	c.Execute()
	if runCount != 2 {
		t.Errorf("runCount=%v, want %v", runCount, 2)
	}
	c.Execute()
	if runCount != 3 {
		t.Errorf("runCount=%v, want %v", runCount, 3)
	}
	if !c.Empty() {
		t.Errorf("buffer not empty")
	}
}

func TestSplit(t *testing.T) {
	c := CommandBuffer{}
	var lines []string
	c.SetCommandExecutors([]Efunc{
		func(cb *CommandBuffer, a cmd.Arguments) (bool, error) {
			lines = append(lines, a.ArgumentString())
			return true, nil
		}})
	c.AddText(`a 1; b "2;3"` + "\nc 4")
	c.InsertText("first 0")
	c.Execute()
	want := []string{"0", "1", "2;3", "4"}
	if len(lines) != len(want) {
		t.Fatalf("lines=%q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d=%q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExecutorOrder(t *testing.T) {
	c := CommandBuffer{}
	var seen []int
	c.SetCommandExecutors([]Efunc{
		func(cb *CommandBuffer, a cmd.Arguments) (bool, error) {
			seen = append(seen, 1)
			return false, nil
		},
		func(cb *CommandBuffer, a cmd.Arguments) (bool, error) {
			seen = append(seen, 2)
			return true, nil
		},
		func(cb *CommandBuffer, a cmd.Arguments) (bool, error) {
			seen = append(seen, 3)
			return true, nil
		}})
	c.AddText("x\n")
	c.Execute()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("seen=%v, want [1 2]", seen)
	}
}
