package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis aligned 3d bounding box.
type Box r3.Box

// Empty returns true if the box has no volume or is inverted.
func (a Box) Empty() bool {
	return !(a.Min.X < a.Max.X && a.Min.Y < a.Max.Y && a.Min.Z < a.Max.Z)
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// IntersectRay returns the parametric interval [tmin, tmax] over which
// the ray origin + t*dir lies inside the box, clipped to t >= 0.
// ok is false when the ray misses the box.
func (a Box) IntersectRay(origin, dir r3.Vec) (tmin, tmax float64, ok bool) {
	tmin, tmax = 0, math.Inf(1)
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{a.Min.X, a.Min.Y, a.Min.Z}
	hi := [3]float64{a.Max.X, a.Max.Y, a.Max.Z}
	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			// Parallel to the slab.
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d[axis]
		t0 := (lo[axis] - o[axis]) * inv
		t1 := (hi[axis] - o[axis]) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmax < tmin {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}
