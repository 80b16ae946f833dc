package render

import (
	"cmp"
	"slices"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// normalDelta is the finite difference step of hit normals.
	normalDelta = 0.0001
	hitEpsilon  = 1e-9
)

// Ray is a half line Origin + t*Dir for t > 0.
type Ray struct {
	Origin, Dir r3.Vec
}

// At returns the point at parameter t.
func (r Ray) At(t float64) r3.Vec { return r3.Add(r.Origin, r3.Scale(t, r.Dir)) }

// Hit is a ray and surface intersection.
type Hit struct {
	T     float64 // ray parameter of the hit.
	Pos   r3.Vec
	Node  NodeID
	Color r3.Vec
	// Normal is estimated from the field. It faces the same side of the
	// surface as triangle normals.
	Normal r3.Vec
}

// Trace returns the intersections of ray with the triangles of finished
// cells sorted by distance along the ray.
func (r *Refiner) Trace(ray Ray) []Hit {
	var hits []Hit
	for _, root := range r.roots {
		hits = r.trace(root, ray, hits)
	}
	slices.SortFunc(hits, func(a, b Hit) int { return cmp.Compare(a.T, b.T) })
	return hits
}

func (r *Refiner) trace(id NodeID, ray Ray, hits []Hit) []Hit {
	n := &r.nodes[id]
	if _, _, ok := d3.Box(n.Box()).IntersectRay(ray.Origin, ray.Dir); !ok {
		return hits
	}
	if n.state == Finished || n.state == ScheduledForMissedFacesCheck {
		for _, tri := range n.polys {
			t, ok := tri.positions().IntersectRay(ray.Origin, ray.Dir, hitEpsilon)
			if !ok {
				continue
			}
			p := ray.At(t)
			s, normal := r.fieldNormal(p)
			if normal == (r3.Vec{}) {
				normal = tri.Normal
			}
			hits = append(hits, Hit{
				T:      t,
				Pos:    p,
				Node:   id,
				Color:  s.ColorOr(implicit.White),
				Normal: normal,
			})
		}
		return hits
	}
	if n.children == nil {
		return hits
	}
	for _, kid := range n.children.flat() {
		hits = r.trace(kid, ray, hits)
	}
	return hits
}

// fieldNormal returns the sample at p and the unit normal estimated by
// forward differences. Probe points are not cached. The normal is zero
// where the field is flat.
func (r *Refiner) fieldNormal(p r3.Vec) (implicit.Sample, r3.Vec) {
	caching := r.f.Caching()
	r.f.SetCaching(false)
	defer r.f.SetCaching(caching)

	s := r.f.Sample(p)
	fx := r.f.Sample(r3.Add(p, r3.Vec{X: normalDelta})).Force
	fy := r.f.Sample(r3.Add(p, r3.Vec{Y: normalDelta})).Force
	fz := r.f.Sample(r3.Add(p, r3.Vec{Z: normalDelta})).Force
	// Outward, towards decreasing force.
	n := r3.Vec{X: s.Force - fx, Y: s.Force - fy, Z: s.Force - fz}
	if r3.Norm(n) == 0 {
		return s, r3.Vec{}
	}
	n = r3.Unit(n)
	if !r.poly.outward {
		n = r3.Scale(-1, n)
	}
	return s, n
}
