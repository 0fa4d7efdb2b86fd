// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"deflight/math/vec"
)

const bspVersion = 29

// LoadFile reads a BSP29 map from disk.
func LoadFile(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Load(path, b)
}

func readLump[T any](data []byte, d directory, what string) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if d.Offset < 0 || d.Size < 0 || int(d.Offset)+int(d.Size) > len(data) {
		return nil, errors.Errorf("%s lump out of bounds", what)
	}
	if int(d.Size)%size != 0 {
		return nil, errors.Errorf("%s lump has funny size %d", what, d.Size)
	}
	r := make([]T, int(d.Size)/size)
	buf := bytes.NewReader(data[d.Offset : d.Offset+d.Size])
	if err := binary.Read(buf, binary.LittleEndian, r); err != nil {
		return nil, errors.Wrapf(err, "reading %s lump", what)
	}
	return r, nil
}

func lumpBytes(data []byte, d directory) []byte {
	if d.Offset < 0 || d.Size <= 0 || int(d.Offset)+int(d.Size) > len(data) {
		return nil
	}
	return data[d.Offset : d.Offset+d.Size]
}

// Load parses the parts of a BSP29 map needed for light placement:
// planes, nodes, leafs, visibility and entities.
func Load(name string, data []byte) (*Model, error) {
	var h header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(err, "%s: reading header", name)
	}
	if h.Version != bspVersion {
		return nil, errors.Errorf("%s has wrong version number (%d should be %d)", name, h.Version, bspVersion)
	}
	m := &Model{name: name}

	planes, err := readLump[plane](data, h.Planes, "planes")
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	for _, p := range planes {
		m.Planes = append(m.Planes, NewPlane(p.Normal, p.Distance))
	}

	m.VisData = lumpBytes(data, h.Visibility)

	leafs, err := readLump[leafV0](data, h.Leafs, "leafs")
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if len(leafs) == 0 || len(leafs) > MaxMapLeafs {
		return nil, errors.Errorf("%s: bad leaf count %d", name, len(leafs))
	}
	for i, l := range leafs {
		ml := &MLeaf{
			NodeBase: NewNodeBase(int(l.Type), boxToFloat(l.Box)),
			Index:    i,
		}
		if l.VisOfs >= 0 && int(l.VisOfs) < len(m.VisData) {
			ml.CompressedVis = m.VisData[l.VisOfs:]
		}
		m.Leafs = append(m.Leafs, ml)
	}

	nodes, err := readLump[nodeV0](data, h.Nodes, "nodes")
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	for _, n := range nodes {
		if n.PlaneID < 0 || int(n.PlaneID) >= len(m.Planes) {
			return nil, errors.Errorf("%s: node with bad plane %d", name, n.PlaneID)
		}
		m.Nodes = append(m.Nodes, &MNode{
			NodeBase: NewNodeBase(0, boxToFloat(n.Box)),
			Plane:    m.Planes[n.PlaneID],
		})
	}
	for i, n := range nodes {
		for j, c := range n.Children {
			p := int(c)
			if p < len(m.Nodes) {
				m.Nodes[i].Children[j] = m.Nodes[p]
				continue
			}
			p = 0xffff - p
			if p >= len(m.Leafs) {
				return nil, errors.Errorf("%s: node %d has bad child %d", name, i, c)
			}
			m.Nodes[i].Children[j] = m.Leafs[p]
		}
	}

	models, err := readLump[model](data, h.Models, "models")
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if len(models) == 0 {
		return nil, errors.Errorf("%s: no world model", name)
	}
	w := models[0]
	m.mins = vec.Vec3{w.BoundingBox[0], w.BoundingBox[1], w.BoundingBox[2]}
	m.maxs = vec.Vec3{w.BoundingBox[3], w.BoundingBox[4], w.BoundingBox[5]}
	if len(m.Nodes) == 0 {
		m.Node = m.Leafs[0]
	} else {
		hn := int(w.HeadNode[0])
		if hn < 0 || hn >= len(m.Nodes) {
			return nil, errors.Errorf("%s: bad head node %d", name, hn)
		}
		m.Node = m.Nodes[hn]
	}
	m.MakeHull0()

	ents := bytes.TrimRight(lumpBytes(data, h.Entities), "\x00")
	m.Entities = ParseEntities(ents)
	return m, nil
}

func boxToFloat(b [6]int16) [6]float32 {
	var r [6]float32
	for i, v := range b {
		r[i] = float32(v)
	}
	return r
}
