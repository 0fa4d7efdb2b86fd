// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strconv"
	"strings"
	"unicode"
)

type QArg struct {
	a string
}

func (a QArg) String() string {
	return a.a
}

func (a QArg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a QArg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a QArg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

// Arguments is one tokenized console line.
type Arguments struct {
	args []QArg
	full string
}

// Argv returns the i-th token or an empty one.
func (c Arguments) Argv(i int) QArg {
	if i < 0 || i >= len(c.args) {
		return QArg{}
	}
	return c.args[i]
}

func (c Arguments) Full() string {
	return c.full
}

func (c Arguments) Args() []QArg {
	return c.args
}

// Strings returns the plain token values.
func (c Arguments) Strings() []string {
	s := make([]string, len(c.args))
	for i, a := range c.args {
		s[i] = a.a
	}
	return s
}

// ArgumentString is everything after the command name, without
// surrounding quotes.
func (c Arguments) ArgumentString() string {
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

// Parse splits a single line into tokens. Quoted strings are one token and
// a // starts a comment that runs to the end of the line.
func Parse(s string) Arguments {
	args := Arguments{
		full: strings.TrimFunc(s, unicode.IsSpace),
		args: []QArg{},
	}
	in := args.full
	if i := strings.IndexAny(in, "\r\n"); i >= 0 {
		in = in[:i]
	}
	for len(in) > 0 {
		switch c := in[0]; {
		case c == ' ' || c == '\t':
			in = in[1:]
		case c == '"':
			end := strings.IndexByte(in[1:], '"')
			if end < 0 {
				// unterminated, take the rest
				args.args = append(args.args, QArg{in[1:]})
				return args
			}
			args.args = append(args.args, QArg{in[1 : end+1]})
			in = in[end+2:]
		case strings.HasPrefix(in, "//"):
			return args
		default:
			end := strings.IndexAny(in, " \t\"")
			if end < 0 {
				end = len(in)
			}
			args.args = append(args.args, QArg{in[:end]})
			in = in[end:]
		}
	}
	return args
}
