// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"deflight/math/vec"
)

// Would be great to type these but positive values are node numbers or so....
const (
	_ = -iota
	CONTENTS_EMPTY
	CONTENTS_SOLID
	CONTENTS_WATER
	CONTENTS_SLIME
	CONTENTS_LAVA
	CONTENTS_SKY
)

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte
	SignBits byte
}

// NewPlane derives the axis type and sign bits from normal.
func NewPlane(normal vec.Vec3, dist float32) *Plane {
	p := &Plane{Normal: normal, Dist: dist, Type: 3}
	for i := 0; i < 3; i++ {
		if normal[i] == 1 {
			p.Type = byte(i)
		}
		if normal[i] < 0 {
			p.SignBits |= 1 << i
		}
	}
	return p
}

type ClipNode struct {
	Plane    *Plane
	Children [2]int
}

type NodeBase struct {
	contents int // 0 to differentiate from leafs

	minMaxs [6]float32
}

func NewNodeBase(contents int, minmax [6]float32) NodeBase {
	return NodeBase{
		contents: contents,
		minMaxs:  minmax,
	}
}

type Node interface {
	Contents() int
}

func (n *NodeBase) Contents() int {
	return n.contents
}

func (n *NodeBase) Mins() vec.Vec3 {
	return vec.Vec3{n.minMaxs[0], n.minMaxs[1], n.minMaxs[2]}
}

func (n *NodeBase) Maxs() vec.Vec3 {
	return vec.Vec3{n.minMaxs[3], n.minMaxs[4], n.minMaxs[5]}
}

type MNode struct {
	NodeBase
	Children [2]Node
	Plane    *Plane
}

type MLeaf struct {
	NodeBase
	// Index is the position inside Model.Leafs. Leaf 0 is the shared solid leaf.
	Index         int
	CompressedVis []byte
}

const (
	MaxMapLeafs = 70000
)

type Model struct {
	name string

	mins vec.Vec3
	maxs vec.Vec3

	Planes    []*Plane
	Leafs     []*MLeaf
	Nodes     []*MNode
	ClipNodes []*ClipNode

	// Hull is the point sized collision hull built from the render nodes.
	Hull    Hull
	VisData []byte

	Entities []*Entity

	Node Node
}

func (q *Model) Mins() vec.Vec3 {
	return q.mins
}
func (q *Model) Maxs() vec.Vec3 {
	return q.maxs
}
func (q *Model) Name() string {
	return q.name
}

// MakeHull0 duplicates the drawing hull structure as a clipping hull.
func (m *Model) MakeHull0() {
	index := make(map[*MNode]int, len(m.Nodes))
	for i, n := range m.Nodes {
		index[n] = i
	}
	m.ClipNodes = make([]*ClipNode, len(m.Nodes))
	for i, n := range m.Nodes {
		c := &ClipNode{Plane: n.Plane}
		for j, child := range n.Children {
			if child.Contents() < 0 {
				c.Children[j] = child.Contents()
			} else {
				c.Children[j] = index[child.(*MNode)]
			}
		}
		m.ClipNodes[i] = c
	}
	first := 0
	if root, ok := m.Node.(*MNode); ok {
		first = index[root]
	}
	m.Hull = Hull{
		ClipNodes:     m.ClipNodes,
		Planes:        m.Planes,
		FirstClipNode: first,
		LastClipNode:  len(m.ClipNodes) - 1,
	}
}
