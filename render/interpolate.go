package render

import (
	"fmt"
	"sync/atomic"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Debug enables panics on internal invariant violations. When unset the
// offending element is skipped.
var Debug = false

var roughEdges atomic.Bool

// SetSmoothEdgeInterpolation sets the process wide edge interpolation mode.
// Smooth interpolation places crossings where the linear interpolant of
// the endpoint forces meets the cutoff. Otherwise crossings are placed
// at edge midpoints. Smooth is the default.
func SetSmoothEdgeInterpolation(smooth bool) { roughEdges.Store(!smooth) }

// SmoothEdgeInterpolation returns the process wide edge interpolation mode.
func SmoothEdgeInterpolation() bool { return !roughEdges.Load() }

// Vertex is a triangle vertex with its interpolated color.
type Vertex struct {
	Pos   r3.Vec
	Color r3.Vec
}

// Triangle is a surface triangle. Normal is unit length.
type Triangle struct {
	V      [3]Vertex
	Normal r3.Vec
}

func (t Triangle) positions() d3.Triangle {
	return d3.Triangle{t.V[0].Pos, t.V[1].Pos, t.V[2].Pos}
}

// Interpolate returns the surface crossing on the edge between samples
// a and b. ok is false if the edge does not straddle the cutoff.
// Callers that need bit identical crossings for an edge shared by two
// cells must pass the endpoints in the same order.
func Interpolate(a, b implicit.Sample, cutoff float64, smooth bool) (v Vertex, ok bool) {
	if (a.Force > cutoff) == (b.Force > cutoff) {
		if Debug {
			panic(fmt.Sprintf("edge does not straddle cutoff %g: forces %g and %g", cutoff, a.Force, b.Force))
		}
		return Vertex{}, false
	}
	t := 0.5
	if smooth {
		t = (cutoff - a.Force) / (b.Force - a.Force)
	}
	ac := a.ColorOr(implicit.White)
	bc := b.ColorOr(implicit.White)
	return Vertex{
		Pos:   d3.Lerp(a.Pos, b.Pos, t),
		Color: d3.Lerp(ac, bc, t),
	}, true
}
