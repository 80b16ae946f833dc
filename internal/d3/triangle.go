package d3

import "gonum.org/v1/gonum/spatial/r3"

// Triangle is a 3d triangle, counter clockwise when seen from the side
// its normal points to.
type Triangle [3]r3.Vec

// Normal returns the non normalized normal (b-a)x(c-a).
func (t Triangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Degenerate returns true if the triangle has coincident vertices or
// an area below tol.
func (t Triangle) Degenerate(tol float64) bool {
	return t[0] == t[1] || t[1] == t[2] || t[0] == t[2] || r3.Norm(t.Normal()) <= 2*tol
}

// IntersectRay returns the distance t along dir at which the ray
// origin + t*dir crosses the triangle, using the Möller-Trumbore test.
// ok is false if the ray misses or hits at t <= epsilon.
func (t Triangle) IntersectRay(origin, dir r3.Vec, epsilon float64) (dist float64, ok bool) {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	h := r3.Cross(dir, e2)
	det := r3.Dot(e1, h)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	inv := 1 / det
	s := r3.Sub(origin, t[0])
	u := inv * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := inv * r3.Dot(dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	dist = inv * r3.Dot(e2, q)
	if dist <= epsilon {
		return 0, false
	}
	return dist, true
}
