package render

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexStride is the number of float32 per vertex written by
// AppendVertexData: position, normal and color.
const VertexStride = 9

// AppendVertexData appends interleaved position, normal and color data
// of tris to dst for upload to a GPU triangle buffer. Every vertex of a
// triangle carries the triangle normal.
func AppendVertexData(dst []float32, tris []Triangle) ([]float32, error) {
	for i, t := range tris {
		for _, v := range t.V {
			start := len(dst)
			dst = appendVec(dst, v.Pos)
			dst = appendVec(dst, t.Normal)
			dst = appendVec(dst, v.Color)
			if bad := badF32(dst[start:]); bad {
				return dst[:start], errors.Errorf("triangle %d has non finite float32 data %v", i, t)
			}
		}
	}
	return dst, nil
}

// AppendEdgeData appends the boundary edges of the polygons of o as
// line segment position pairs. Edges shared by two of the cell's
// triangles are interior to its patch and are skipped.
func AppendEdgeData(dst []float32, o *Octree) []float32 {
	type edge [2]r3.Vec
	key := func(a, b r3.Vec) edge {
		if a.X < b.X || (a.X == b.X && (a.Y < b.Y || (a.Y == b.Y && a.Z < b.Z))) {
			return edge{a, b}
		}
		return edge{b, a}
	}
	count := make(map[edge]int)
	var order []edge
	for _, t := range o.polys {
		for i := range t.V {
			e := key(t.V[i].Pos, t.V[(i+1)%3].Pos)
			if count[e] == 0 {
				order = append(order, e)
			}
			count[e]++
		}
	}
	for _, e := range order {
		if count[e] == 1 {
			dst = appendVec(dst, e[0])
			dst = appendVec(dst, e[1])
		}
	}
	return dst
}

// AppendBoxData appends the 12 edges of the cell o as line segment
// position pairs.
func AppendBoxData(dst []float32, o *Octree) []float32 {
	for _, e := range cubeEdges {
		dst = appendVec(dst, o.corner(e[0]).Pos)
		dst = appendVec(dst, o.corner(e[1]).Pos)
	}
	return dst
}

func appendVec(dst []float32, v r3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}

func badF32(data []float32) bool {
	for _, f := range data {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return true
		}
	}
	return false
}
