package render

import (
	"github.com/pkg/errors"
	"github.com/soypat/implicit/internal/d3"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. Vertices at the same position are
// merged.
type Mesh struct {
	Vertices []Vertex
	// Faces index Vertices, counter clockwise seen from the side the
	// face normal points to.
	Faces [][3]int
}

// Triangles returns the triangles of all known cells. Queued cells
// contribute their coarse polygonization.
func (r *Refiner) Triangles() []Triangle {
	var tris []Triangle
	for o := range r.KnownOctrees() {
		tris = append(tris, o.polys...)
	}
	return tris
}

// ToMesh merges the triangles of all known cells into a Mesh and
// validates that it is a closed, consistently oriented manifold.
// The mesh is returned even if validation fails.
func (r *Refiner) ToMesh() (*Mesh, error) {
	m := NewMesh(r.Triangles())
	if err := m.Validate(); err != nil {
		return m, errors.Wrap(err, "mesh is not a closed oriented manifold")
	}
	return m, nil
}

// NewMesh merges triangle vertices by exact position.
func NewMesh(tris []Triangle) *Mesh {
	m := &Mesh{Faces: make([][3]int, 0, len(tris))}
	index := make(map[r3.Vec]int)
	for _, t := range tris {
		var face [3]int
		for i, v := range t.V {
			idx, ok := index[v.Pos]
			if !ok {
				idx = len(m.Vertices)
				index[v.Pos] = idx
				m.Vertices = append(m.Vertices, v)
			}
			face[i] = idx
		}
		m.Faces = append(m.Faces, face)
	}
	return m
}

type halfEdge [2]int

func (m *Mesh) halfEdges(face int) [3]halfEdge {
	f := m.Faces[face]
	return [3]halfEdge{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
}

// Validate returns an error for each directed edge used by more than
// one face and each directed edge without an opposite edge.
func (m *Mesh) Validate() (err error) {
	directed := make(map[halfEdge]int, 3*len(m.Faces))
	for f := range m.Faces {
		for _, e := range m.halfEdges(f) {
			if e[0] == e[1] {
				err = multierr.Append(err, errors.Errorf("face %d is degenerate", f))
				continue
			}
			if other, dup := directed[e]; dup {
				err = multierr.Append(err, errors.Errorf("edge %v shared by faces %d and %d with the same direction", e, other, f))
				continue
			}
			directed[e] = f
		}
	}
	for e, f := range directed {
		if _, ok := directed[halfEdge{e[1], e[0]}]; !ok {
			err = multierr.Append(err, errors.Errorf("edge %v of face %d has no opposite", e, f))
		}
	}
	return err
}

// ValidateClosed ignores orientation and returns an error for each edge
// not shared by exactly two faces.
func (m *Mesh) ValidateClosed() (err error) {
	count := make(map[halfEdge]int, 3*len(m.Faces))
	for f := range m.Faces {
		for _, e := range m.halfEdges(f) {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			count[e]++
		}
	}
	for e, n := range count {
		if n != 2 {
			err = multierr.Append(err, errors.Errorf("edge %v shared by %d faces", e, n))
		}
	}
	return err
}

// Components returns the number of connected components of the mesh.
func (m *Mesh) Components() int {
	g := simple.NewUndirectedGraph()
	for i := range m.Vertices {
		g.AddNode(simple.Node(i))
	}
	for f := range m.Faces {
		for _, e := range m.halfEdges(f) {
			if e[0] == e[1] || g.HasEdgeBetween(int64(e[0]), int64(e[1])) {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
		}
	}
	return len(topo.ConnectedComponents(g))
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	b := d3.Box{Min: m.Vertices[0].Pos, Max: m.Vertices[0].Pos}
	for _, v := range m.Vertices[1:] {
		b = b.Include(v.Pos)
	}
	return r3.Box(b)
}

// VertexNormals returns area weighted unit vertex normals.
func (m *Mesh) VertexNormals() []r3.Vec {
	normals := make([]r3.Vec, len(m.Vertices))
	for _, f := range m.Faces {
		t := d3.Triangle{m.Vertices[f[0]].Pos, m.Vertices[f[1]].Pos, m.Vertices[f[2]].Pos}
		n := t.Normal() // length is twice the area.
		for _, v := range f {
			normals[v] = r3.Add(normals[v], n)
		}
	}
	for i, n := range normals {
		if r3.Norm(n) > 0 {
			normals[i] = r3.Unit(n)
		}
	}
	return normals
}
