// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"

	"deflight/math/vec"
)

// NewRoom builds a closed box world split into cells along the x axis.
// Everything outside the box is solid, leaf i (1..cells) is the i-th cell.
// All leafs see each other.
func NewRoom(mins, maxs vec.Vec3, cells int) *Model {
	if cells < 1 {
		cells = 1
	}
	m := &Model{
		name: fmt.Sprintf("room_%d", cells),
		mins: mins,
		maxs: maxs,
	}
	box := func(lo, hi vec.Vec3) [6]float32 {
		return [6]float32{lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]}
	}
	solid := &MLeaf{NodeBase: NewNodeBase(CONTENTS_SOLID, box(mins, maxs))}
	m.Leafs = append(m.Leafs, solid)
	w := (maxs[0] - mins[0]) / float32(cells)
	for i := 0; i < cells; i++ {
		lo, hi := mins, maxs
		lo[0] = mins[0] + float32(i)*w
		hi[0] = mins[0] + float32(i+1)*w
		m.Leafs = append(m.Leafs, &MLeaf{
			NodeBase: NewNodeBase(CONTENTS_EMPTY, box(lo, hi)),
			Index:    i + 1,
		})
	}

	node := func(normal vec.Vec3, dist float32) *MNode {
		p := NewPlane(normal, dist)
		m.Planes = append(m.Planes, p)
		n := &MNode{NodeBase: NewNodeBase(0, box(mins, maxs)), Plane: p}
		m.Nodes = append(m.Nodes, n)
		return n
	}
	walls := []*MNode{
		node(vec.Vec3{1, 0, 0}, mins[0]),
		node(vec.Vec3{1, 0, 0}, maxs[0]),
		node(vec.Vec3{0, 1, 0}, mins[1]),
		node(vec.Vec3{0, 1, 0}, maxs[1]),
		node(vec.Vec3{0, 0, 1}, mins[2]),
		node(vec.Vec3{0, 0, 1}, maxs[2]),
	}
	// lower walls keep the inside in front, upper walls behind
	for i, n := range walls {
		if i%2 == 0 {
			n.Children[1] = solid
		} else {
			n.Children[0] = solid
		}
	}
	for i := 0; i < len(walls)-1; i++ {
		if i%2 == 0 {
			walls[i].Children[0] = walls[i+1]
		} else {
			walls[i].Children[1] = walls[i+1]
		}
	}

	var inside Node = m.Leafs[cells]
	for k := cells - 1; k >= 1; k-- {
		split := node(vec.Vec3{1, 0, 0}, mins[0]+float32(k)*w)
		split.Children[0] = inside
		split.Children[1] = m.Leafs[k]
		inside = split
	}
	walls[len(walls)-1].Children[1] = inside

	m.Node = walls[0]
	m.MakeHull0()
	return m
}
