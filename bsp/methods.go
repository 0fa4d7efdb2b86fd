// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"
	"log/slog"

	"deflight/math/vec"
)

func (m *Model) PointInLeaf(p vec.Vec3) (*MLeaf, error) {
	if m == nil || m.Node == nil {
		return nil, fmt.Errorf("PointInLeaf: bad model")
	}

	node := m.Node
	for {
		if node.Contents() < 0 {
			return node.(*MLeaf), nil
		}
		n := node.(*MNode)
		plane := n.Plane
		d := vec.Dot(p, plane.Normal) - plane.Dist
		if d > 0 {
			node = n.Children[0]
		} else {
			node = n.Children[1]
		}
	}
}

// VisSet is a decompressed visibility row. Bit k-1 is set if leaf k is
// visible. Leaf 0 is never visible.
type VisSet []byte

// Contains reports whether leaf is marked visible.
func (v VisSet) Contains(leaf int) bool {
	if leaf <= 0 {
		return false
	}
	i := leaf - 1
	if i>>3 >= len(v) {
		return false
	}
	return v[i>>3]&(1<<(i&7)) != 0
}

// Add marks leaf visible.
func (v VisSet) Add(leaf int) {
	if leaf <= 0 {
		return
	}
	i := leaf - 1
	if i>>3 >= len(v) {
		return
	}
	v[i>>3] |= 1 << (i & 7)
}

func (m *Model) visRowSize() int {
	return (len(m.Leafs) + 6) / 8 // (len(Leafs) - 'leaf[0]' + 7)/8
}

// NewVisSet returns an empty set sized for m.
func (m *Model) NewVisSet() VisSet {
	return make(VisSet, m.visRowSize())
}

// AllVisible returns a set containing every leaf of m.
func (m *Model) AllVisible() VisSet {
	v := m.NewVisSet()
	for i := range v {
		v[i] = 0xff
	}
	return v
}

func (m *Model) DecompressVis(in []byte) VisSet {
	row := m.visRowSize()

	if len(in) == 0 {
		// no vis info, so make all visible
		return m.AllVisible()
	}

	// 'in' is compressed and looks like
	// 70550311
	// and gets uncompressed to
	// 700000500011	(7 5x0 5 3x0 1 1)

	out := make(VisSet, row)
	j := 0
	for i := 0; i < len(in) && j < row; i++ {
		if in[i] != 0 {
			out[j] = in[i]
			j++
		} else {
			i++
			if i >= len(in) {
				slog.Warn("Faulty vis data", slog.String("model", m.Name()))
				break
			}
			for c := in[i]; c > 0 && j < row; c-- {
				out[j] = 0
				j++
			}
		}
	}
	return out
}

func (m *Model) LeafPVS(leaf *MLeaf) VisSet {
	if leaf.Index == 0 { // Leaf 0 is a solid leaf
		return m.AllVisible()
	}
	return m.DecompressVis(leaf.CompressedVis)
}

/*
The PVS must include a small area around the camera. Otherwise a light
touching a leaf right behind a portal might not show up.
*/
func (m *Model) addToFatPVS(org vec.Vec3, n Node, fpvs VisSet) {
	node := n
	for {
		if node.Contents() < 0 {
			// if this is a leaf, accumulate the pvs bits
			if node.Contents() != CONTENTS_SOLID {
				pvs := m.LeafPVS(node.(*MLeaf))
				for i := range fpvs {
					fpvs[i] |= pvs[i]
				}
			}
			return
		}
		no := node.(*MNode)
		plane := no.Plane
		d := vec.Dot(org, plane.Normal) - plane.Dist
		if d > 8 {
			node = no.Children[0]
		} else if d < -8 {
			node = no.Children[1]
		} else { // go down both
			m.addToFatPVS(org, no.Children[0], fpvs)
			node = no.Children[1]
		}
	}
}

// FatPVS calculates a PVS that is the inclusive or of all leafs within 8
// units of the given point.
func (m *Model) FatPVS(org vec.Vec3) VisSet {
	pvs := m.NewVisSet()
	if m.Node != nil {
		m.addToFatPVS(org, m.Node, pvs)
	}
	return pvs
}

// LeavesInBox calls fn for every non solid leaf touching the box until fn
// returns false. Returns false if the enumeration was stopped.
func (m *Model) LeavesInBox(mins, maxs vec.Vec3, fn func(leaf int) bool) bool {
	if m.Node == nil {
		return true
	}
	return m.leavesInBox(m.Node, mins, maxs, fn)
}

func (m *Model) leavesInBox(node Node, mins, maxs vec.Vec3, fn func(leaf int) bool) bool {
	for {
		if node.Contents() < 0 {
			if node.Contents() == CONTENTS_SOLID {
				return true
			}
			return fn(node.(*MLeaf).Index)
		}
		n := node.(*MNode)
		switch n.Plane.BoxOnPlaneSide(mins, maxs) {
		case 1:
			node = n.Children[0]
		case 2:
			node = n.Children[1]
		default:
			if !m.leavesInBox(n.Children[0], mins, maxs, fn) {
				return false
			}
			node = n.Children[1]
		}
	}
}
