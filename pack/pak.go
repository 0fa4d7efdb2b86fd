// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads Quake .pak archives.
package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

const entrySize = 64

var magic = [4]byte{'P', 'A', 'C', 'K'}

type file struct {
	offset int64
	size   int64
}

type Pack struct {
	r     io.ReaderAt
	c     io.Closer
	name  string
	files map[string]file
}

// Open reads the directory of the pak at path.
func Open(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p, err := New(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.c = f
	return p, nil
}

// New reads the directory of a pak from r.
func New(name string, r io.ReaderAt) (*Pack, error) {
	p := &Pack{r: r, name: name}
	var h header
	if err := binary.Read(io.NewSectionReader(r, 0, 12), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(err, "%s: reading header", name)
	}
	if h.ID != magic {
		return nil, errors.Errorf("%s is not a pack", name)
	}
	if h.Offset < 0 || h.Size < 0 || h.Size%entrySize != 0 {
		return nil, errors.Errorf("%s: bad directory %d+%d", name, h.Offset, h.Size)
	}
	es := make([]entry, h.Size/entrySize)
	dir := io.NewSectionReader(r, int64(h.Offset), int64(h.Size))
	if err := binary.Read(dir, binary.LittleEndian, es); err != nil {
		return nil, errors.Wrapf(err, "%s: reading directory", name)
	}
	p.files = make(map[string]file, len(es))
	for _, e := range es {
		n := bytes.IndexByte(e.Name[:], 0)
		if n < 0 {
			n = len(e.Name)
		}
		fn := string(e.Name[:n])
		if _, ok := p.files[fn]; ok {
			return nil, errors.Errorf("%s: %s is not unique", name, fn)
		}
		p.files[fn] = file{offset: int64(e.Offset), size: int64(e.Size)}
	}
	return p, nil
}

// Open returns a reader of the entry or os.ErrNotExist.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NewSectionReader(p.r, f.offset, f.size), nil
}

func (p *Pack) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

func (p *Pack) ReadFile(name string) ([]byte, error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	b := make([]byte, r.Size())
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrapf(err, "%s: reading %s", p.name, name)
	}
	return b, nil
}

// Names lists the entries sorted.
func (p *Pack) Names() []string {
	ns := make([]string, 0, len(p.files))
	for n := range p.files {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

// Write stores files as a pak in w.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for n := range files {
		if len(n) >= len(entry{}.Name) {
			return errors.Errorf("name %s too long", n)
		}
		names = append(names, n)
	}
	sort.Strings(names)
	var data bytes.Buffer
	es := make([]entry, len(names))
	off := int32(12)
	for i, n := range names {
		copy(es[i].Name[:], n)
		es[i].Offset = off
		es[i].Size = int32(len(files[n]))
		off += es[i].Size
		data.Write(files[n])
	}
	h := header{ID: magic, Offset: off, Size: int32(len(es) * entrySize)}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, es)
}
