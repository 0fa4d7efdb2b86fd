// SPDX-License-Identifier: GPL-2.0-or-later

// Package lightfile reads and writes sets of light records.
//
// The text form is a list of `{ "key" "value" }` records, the same format the
// level entity lump uses. The binary form is a protobuf list of structs.
package lightfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"deflight/bsp"
	"deflight/cookie"
	"deflight/light"
)

// Parse returns the lights in data. Records with a different classname are
// skipped, records without one are taken as lights.
func Parse(data []byte, names *cookie.Table, cookies light.CookieSource) ([]*light.Light, error) {
	var ls []*light.Light
	for i, e := range bsp.ParseEntities(data) {
		if n, ok := e.Name(); ok && n != light.ClassName {
			continue
		}
		l, err := light.FromEntity(e, names, cookies)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		ls = append(ls, l)
	}
	return ls, nil
}

func Load(path string, names *cookie.Table, cookies light.CookieSource) ([]*light.Light, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ls, err := Parse(data, names, cookies)
	if err != nil {
		return nil, errors.Wrapf(err, "lightfile %s", path)
	}
	return ls, nil
}

// Format writes lights in the text form.
func Format(ls []*light.Light, names *cookie.Table) []byte {
	es := make([]*bsp.Entity, 0, len(ls))
	for _, l := range ls {
		es = append(es, l.Entity(names))
	}
	return bsp.WriteEntities(es)
}

// Save writes the file next to path first and renames it so a watcher never
// sees a partial file.
func Save(path string, ls []*light.Light, names *cookie.Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(Format(ls, names)); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "lightfile %s", path)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Marshal writes lights in the binary form.
func Marshal(ls []*light.Light, names *cookie.Table) ([]byte, error) {
	list := &structpb.ListValue{}
	for _, l := range ls {
		s, err := l.Struct(names)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	return proto.Marshal(list)
}

// Unmarshal reads lights written by Marshal.
func Unmarshal(data []byte, names *cookie.Table, cookies light.CookieSource) ([]*light.Light, error) {
	list := &structpb.ListValue{}
	if err := proto.Unmarshal(data, list); err != nil {
		return nil, errors.Wrap(err, "lightfile: snapshot")
	}
	ls := make([]*light.Light, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, errors.Errorf("lightfile: snapshot entry %d is not a struct", i)
		}
		l, err := light.FromStruct(s, names, cookies)
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot entry %d", i)
		}
		ls = append(ls, l)
	}
	return ls, nil
}
