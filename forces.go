package implicit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultSoftRadius is the radius of influence of a MetaBall.
	DefaultSoftRadius = 5.0
	// DefaultTorusMajor is the centerline radius of a MetaTorus.
	DefaultTorusMajor = 4.0
	maxForce          = 10000
	nearZero          = 1e-12
)

var (
	_ Force   = MetaBall{}
	_ Locator = MetaBall{}
	_ Colorer = MetaBall{}
	_ Force   = PointCharge{}
	_ Locator = PointCharge{}
	_ Force   = MetaCube{}
	_ Force   = MetaTorus{}
	_ Force   = Distorted{}
	_ Force   = DistanceForce{}
)

// Wyvill is the Wyvill brothers' "soft object" falloff for a source of
// the given strength and radius of influence, evaluated at distance r.
// It is smooth and vanishes for r >= radius.
func Wyvill(r, strength, radius float64) float64 {
	switch {
	case r < radius/3:
		return strength * (1 - 3*r*r/(radius*radius))
	case r < radius:
		d := 1 - r/radius
		return 1.5 * strength * d * d
	default:
		return 0
	}
}

// MetaBall is a point source with Wyvill falloff.
type MetaBall struct {
	Center   r3.Vec
	Strength float64
	// Radius of influence. DefaultSoftRadius is used if zero.
	Radius float64
	Tint   r3.Vec
}

// NewMetaBall returns a metaball with the default radius of influence.
func NewMetaBall(center r3.Vec, strength float64, color r3.Vec) MetaBall {
	return MetaBall{Center: center, Strength: strength, Radius: DefaultSoftRadius, Tint: color}
}

func (m MetaBall) Evaluate(p r3.Vec) float64 {
	radius := m.Radius
	if radius == 0 {
		radius = DefaultSoftRadius
	}
	return Wyvill(r3.Norm(r3.Sub(p, m.Center)), m.Strength, radius)
}

func (m MetaBall) Position() r3.Vec { return m.Center }
func (m MetaBall) Color() r3.Vec    { return m.Tint }

// PointCharge is an inverse square source: Strength/|p-Center|².
// The value is clamped near the center.
type PointCharge struct {
	Center   r3.Vec
	Strength float64
}

func (c PointCharge) Evaluate(p r3.Vec) float64 {
	d2 := r3.Norm2(r3.Sub(p, c.Center))
	if d2 < nearZero {
		return maxForce
	}
	return math.Min(maxForce, c.Strength/d2)
}

func (c PointCharge) Position() r3.Vec { return c.Center }

// MetaCube is a cube-like source centered at the origin. Its force
// drops off continuously with distance so it blends with other sources.
type MetaCube struct {
	Tint r3.Vec
}

func (m MetaCube) Evaluate(p r3.Vec) float64 {
	x := cubeFalloff(p.X)
	y := cubeFalloff(p.Y)
	z := cubeFalloff(p.Z)
	return math.Min(x, math.Min(y, z))
}

func (m MetaCube) Color() r3.Vec { return m.Tint }

func cubeFalloff(v float64) float64 {
	v = math.Abs(v)
	if v < nearZero {
		return maxForce
	}
	return math.Min(maxForce, math.Pow(1/v, 10))
}

// MetaTorus is a ring source lying in the XZ plane centered at the origin,
// with Wyvill falloff from its centerline.
type MetaTorus struct {
	// Major is the radius of the centerline. DefaultTorusMajor is used if zero.
	Major    float64
	Strength float64
}

func (m MetaTorus) Evaluate(p r3.Vec) float64 {
	inPlane := r3.Vec{X: p.X, Z: p.Z}
	n := r3.Norm(inPlane)
	if n < 0.01 {
		return 0
	}
	major := m.Major
	if major == 0 {
		major = DefaultTorusMajor
	}
	onRing := r3.Scale(major/n, inPlane)
	return Wyvill(r3.Norm(r3.Sub(p, onRing)), m.Strength, DefaultSoftRadius)
}

// Distorted evaluates an inner force through a coordinate remapping.
type Distorted struct {
	Inner Force
	// Remap maps a point in real space to the inner force's space.
	Remap func(r3.Vec) r3.Vec
}

func (d Distorted) Evaluate(p r3.Vec) float64 {
	return d.Inner.Evaluate(d.Remap(p))
}

// Color forwards the inner force color, white if it has none.
func (d Distorted) Color() r3.Vec {
	if c, ok := d.Inner.(Colorer); ok {
		return c.Color()
	}
	return White
}

// Twist returns inner twisted about the X axis by rate radians per unit length.
func Twist(inner Force, rate float64) Distorted {
	return Distorted{
		Inner: inner,
		Remap: func(p r3.Vec) r3.Vec {
			t := rate * p.X / 1.5
			sin, cos := math.Sincos(t)
			return r3.Vec{
				X: p.X,
				Y: p.Y*cos - p.Z*sin,
				Z: p.Y*sin + p.Z*cos,
			}
		},
	}
}

// Translate returns inner displaced by offset.
func Translate(inner Force, offset r3.Vec) Distorted {
	return Distorted{
		Inner: inner,
		Remap: func(p r3.Vec) r3.Vec { return r3.Sub(p, offset) },
	}
}

// DistanceForce converts a signed distance function into a force equal
// to 0.5 on the SDF surface, rising to 1 inside and falling to 0 outside
// over Falloff distance. With the default cutoff the extracted surface
// approximates the SDF's zero level set and blends with nearby sources.
type DistanceForce struct {
	SDF     SDF3
	Falloff float64
	Tint    r3.Vec
}

func (d DistanceForce) Evaluate(p r3.Vec) float64 {
	dist := d.SDF.Evaluate(p)
	v := 0.5 * (1 - dist/d.Falloff)
	return math.Max(0, math.Min(1, v))
}

func (d DistanceForce) Color() r3.Vec { return d.Tint }
