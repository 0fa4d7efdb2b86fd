// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"deflight/math/vec"
)

// encode writes m as a minimal BSP29 file.
func encode(t *testing.T, m *Model, ents string) []byte {
	t.Helper()
	planeIdx := map[*Plane]int{}
	var planes []plane
	for i, p := range m.Planes {
		planeIdx[p] = i
		planes = append(planes, plane{Normal: p.Normal, Distance: p.Dist, Type: int32(p.Type)})
	}
	nodeIdx := map[*MNode]int{}
	for i, n := range m.Nodes {
		nodeIdx[n] = i
	}
	var nodes []nodeV0
	for _, n := range m.Nodes {
		var nv nodeV0
		nv.PlaneID = int32(planeIdx[n.Plane])
		for j, c := range n.Children {
			if c.Contents() < 0 {
				nv.Children[j] = uint16(0xffff - c.(*MLeaf).Index)
			} else {
				nv.Children[j] = uint16(nodeIdx[c.(*MNode)])
			}
		}
		nodes = append(nodes, nv)
	}
	var leafs []leafV0
	for _, l := range m.Leafs {
		leafs = append(leafs, leafV0{Type: int32(l.Contents()), VisOfs: -1})
	}
	root := nodeIdx[m.Node.(*MNode)]
	models := []model{{
		BoundingBox: [6]float32{m.mins[0], m.mins[1], m.mins[2], m.maxs[0], m.maxs[1], m.maxs[2]},
		HeadNode:    [4]int32{int32(root)},
	}}

	var h header
	h.Version = bspVersion
	var body bytes.Buffer
	offset := int32(binary.Size(h))
	add := func(d *directory, v any) {
		start := body.Len()
		if b, ok := v.([]byte); ok {
			body.Write(b)
		} else if err := binary.Write(&body, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
		d.Offset = offset + int32(start)
		d.Size = int32(body.Len() - start)
	}
	add(&h.Entities, []byte(ents+"\x00"))
	add(&h.Planes, planes)
	add(&h.Nodes, nodes)
	add(&h.Leafs, leafs)
	add(&h.Models, models)

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, h); err != nil {
		t.Fatal(err)
	}
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestLoad(t *testing.T) {
	room := testRoom()
	data := encode(t, room, entityData)
	m, err := Load("room.bsp", data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Leafs) != len(room.Leafs) || len(m.Nodes) != len(room.Nodes) {
		t.Fatalf("Load: %d leafs %d nodes, want %d %d", len(m.Leafs), len(m.Nodes), len(room.Leafs), len(room.Nodes))
	}
	if len(m.Entities) != 2 {
		t.Errorf("Load: %d entities, want 2", len(m.Entities))
	}
	for _, p := range []vec.Vec3{{-400, 0, 0}, {100, 10, 10}, {0, 0, 300}} {
		a, _ := room.PointInLeaf(p)
		b, _ := m.PointInLeaf(p)
		if a.Index != b.Index {
			t.Errorf("PointInLeaf(%v) = %d, want %d", p, b.Index, a.Index)
		}
	}
	got := m.TraceWorld(vec.Vec3{}, vec.Vec3{0, 0, 1000})
	if got[2] > 128 {
		t.Errorf("TraceWorld on loaded map = %v", got)
	}
}

func TestLoadBadVersion(t *testing.T) {
	data := encode(t, testRoom(), "")
	data[0] = 30
	if _, err := Load("bad.bsp", data); err == nil {
		t.Errorf("Load accepted version 30")
	}
}

func TestLoadTruncated(t *testing.T) {
	if _, err := Load("short.bsp", []byte{29, 0, 0}); err == nil {
		t.Errorf("Load accepted a truncated header")
	}
}
