// Package implicit defines scalar force fields whose isosurfaces are
// extracted by the render package. A field is the sum of one or more
// Force sources; the surface lies where the sum crosses the field cutoff.
package implicit

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Force is a scalar field source, such as a metaball.
type Force interface {
	// Evaluate returns the contribution of the source at point p.
	Evaluate(p r3.Vec) float64
}

// Colorer is implemented by forces that contribute a surface color.
type Colorer interface {
	Color() r3.Vec
}

// Locator is implemented by point-like forces. Their position is added
// as a mandatory refinement target so sharp sources are not missed by
// coarse sampling.
type Locator interface {
	Position() r3.Vec
}

// SDF3 is a signed distance function. The distance is negative
// inside the solid.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

// White is the default sample color.
var White = r3.Vec{X: 1, Y: 1, Z: 1}
