// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Version      int32
	Entities     directory
	Planes       directory
	Textures     directory
	Vertexes     directory
	Visibility   directory
	Nodes        directory
	Texinfo      directory
	Faces        directory
	Lighting     directory
	ClipNodes    directory
	Leafs        directory
	MarkSurfaces directory
	Edges        directory
	SurfaceEdges directory // SURFEDGES
	Models       directory
}

// Model, either a big zone, the level or parts inside that zone
type model struct {
	BoundingBox  [6]float32
	Origin       [3]float32
	HeadNode     [4]int32
	VisLeafCount int32 // not including the solid leaf 0
	FirstFace    int32
	FaceCount    int32
}

type nodeV0 struct {
	PlaneID      int32
	Children     [2]uint16
	Box          [6]int16
	FirstSurface uint16
	SurfaceCount uint16
}

type leafV0 struct {
	Type             int32 // Contents
	VisOfs           int32
	Box              [6]int16 // mins & maxs
	FirstMarkSurface uint16   // firstmarksurface
	MarkSurfaceCount uint16   // nummarksurfaces
	Ambients         [4]byte  // ambient_level
}

type plane struct {
	Normal   [3]float32
	Distance float32
	Type     int32 // 0: axial plane in X, 1: axial plane in Y, 2 axial in Z, 3,4,5 similar but non axial
}
