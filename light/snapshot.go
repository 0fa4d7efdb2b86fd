// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"deflight/bsp"
	"deflight/cookie"
)

// Struct returns the persisted record of the light as a protobuf struct.
// Every value is kept as the text of the record so a snapshot restores the
// same light as the record would.
func (l *Light) Struct(names *cookie.Table) (*structpb.Struct, error) {
	e := l.Entity(names)
	fields := make(map[string]any, len(e.PropertyNames())+1)
	for _, k := range e.PropertyNames() {
		v, _ := e.Property(k)
		fields[k] = v
	}
	fields["id"] = l.id.String()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "light: snapshot")
	}
	return s, nil
}

// FromStruct restores a light written by Struct. The light gets a new id.
func FromStruct(s *structpb.Struct, names *cookie.Table, cookies CookieSource) (*Light, error) {
	e := bsp.NewEntityFromPairs()
	for k, v := range s.GetFields() {
		if k == "id" {
			continue
		}
		switch x := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			e.SetProperty(k, x.StringValue)
		case *structpb.Value_NumberValue:
			e.SetProperty(k, formatFloat(float32(x.NumberValue)))
		case *structpb.Value_BoolValue:
			e.SetProperty(k, fmt.Sprint(x.BoolValue))
		default:
			return nil, errors.Errorf("light: snapshot field %s has unsupported kind %T", k, x)
		}
	}
	return FromEntity(e, names, cookies)
}
