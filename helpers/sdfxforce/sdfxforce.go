// Package sdfxforce adapts github.com/deadsy/sdfx solids into forces so
// CAD shapes can blend with metaballs.
package sdfxforce

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ implicit.SDF3 = Solid{}

// Solid wraps an sdfx SDF3.
type Solid struct {
	S sdf.SDF3
}

func (s Solid) Evaluate(p r3.Vec) float64 {
	return s.S.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

// Bounds returns the sdfx bounding box of the solid.
func (s Solid) Bounds() r3.Box {
	bb := s.S.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// Force returns a distance force for s. The force falls from 1 inside
// the solid to 0 at falloff outside it.
func Force(s sdf.SDF3, falloff float64, color r3.Vec) (implicit.DistanceForce, error) {
	if s == nil {
		return implicit.DistanceForce{}, errors.New("nil sdf")
	}
	if !(falloff > 0) {
		return implicit.DistanceForce{}, errors.Errorf("falloff must be positive, got %g", falloff)
	}
	return implicit.DistanceForce{SDF: Solid{S: s}, Falloff: falloff, Tint: color}, nil
}

// Sphere returns the distance force of a sphere centered at center.
func Sphere(center r3.Vec, radius, falloff float64, color r3.Vec) (implicit.DistanceForce, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return implicit.DistanceForce{}, errors.Wrap(err, "sdfx sphere")
	}
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: center.Z}))
	return Force(s, falloff, color)
}

// Box returns the distance force of a box of the given size centered at
// center with rounded edges.
func Box(center, size r3.Vec, round, falloff float64, color r3.Vec) (implicit.DistanceForce, error) {
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, round)
	if err != nil {
		return implicit.DistanceForce{}, errors.Wrap(err, "sdfx box")
	}
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: center.Z}))
	return Force(s, falloff, color)
}
