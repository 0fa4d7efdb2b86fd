// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"fmt"
	"strings"
)

// Entity is one `{ "key" "value" ... }` record. Keys keep the order in
// which they were first seen so a written record matches the parsed one.
type Entity struct {
	properties map[string]string
	keys       []string
}

func NewEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string)}
	// parse the entity line by line
	lines := bytes.Split(p, []byte("\n"))
	for _, l := range lines {
		// look for something of the form
		// "key" "value"
		q := bytes.IndexByte(l, '"')
		if q == -1 {
			continue
		}
		r := l[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		key := string(r[:q])
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		value := string(r[:q])
		e.SetProperty(key, value)
	}
	return e
}

// NewEntityFromPairs builds an entity from key, value, key, value...
func NewEntityFromPairs(kv ...string) *Entity {
	e := &Entity{properties: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		e.SetProperty(kv[i], kv[i+1])
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) SetProperty(name, value string) {
	if _, ok := e.properties[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.properties[name] = value
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

func (e *Entity) PropertyNames() []string {
	return append([]string(nil), e.keys...)
}

// String writes the entity in the format ParseEntities reads.
func (e *Entity) String() string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range e.keys {
		fmt.Fprintf(&b, "\"%s\" \"%s\"\n", k, e.properties[k])
	}
	b.WriteString("}\n")
	return b.String()
}

func ParseEntities(data []byte) []*Entity {
	/*
		The data looks like:
		{
		  "name" "value"
		  "name2" "value2"
		}
		{
		  "name3" "value"
		  {
		    ()()()...
		  }
		}
		But I have not seen the nested stuff
	*/
	// First split the entities
	es := []*Entity{}
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				// Bad input
				return nil
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			if q == 0 {
				q++
			} else {
				q--
			}
		}
	}
	for _, e := range ess {
		es = append(es, NewEntity(e))
	}
	return es
}

// WriteEntities is the inverse of ParseEntities.
func WriteEntities(es []*Entity) []byte {
	var b bytes.Buffer
	for _, e := range es {
		b.WriteString(e.String())
	}
	return b.Bytes()
}
