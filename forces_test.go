package implicit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestWyvill(t *testing.T) {
	const (
		s   = 2.0
		b   = 5.0
		tol = 1e-12
	)
	for _, test := range []struct {
		r    float64
		want float64
	}{
		{0, s},
		{b / 3, s * 2 / 3},
		{b / 2, s * 1.5 * 0.25},
		{b, 0},
		{2 * b, 0},
	} {
		got := Wyvill(test.r, s, b)
		if math.Abs(got-test.want) > tol {
			t.Errorf("Wyvill(%g) got %g, want %g", test.r, got, test.want)
		}
	}
	// Continuous at the branch point.
	left := Wyvill(b/3-1e-9, s, b)
	right := Wyvill(b/3+1e-9, s, b)
	if math.Abs(left-right) > 1e-6 {
		t.Errorf("discontinuity at b/3: %g != %g", left, right)
	}
}

func TestMetaBallIsoRadius(t *testing.T) {
	ball := NewMetaBall(r3.Vec{X: 3, Y: -1}, 1, White)
	// 1.5(1-r/5)^2 = 0.5
	iso := 5 * (1 - math.Sqrt(1.0/3))
	f := NewForceFunction(ball)
	inside := f.Sample(r3.Add(ball.Center, r3.Vec{Z: iso - 1e-6}))
	outside := f.Sample(r3.Add(ball.Center, r3.Vec{Y: iso + 1e-6}))
	if !f.IsHot(inside) || f.IsHot(outside) {
		t.Errorf("iso radius %g misplaced: inside %g outside %g", iso, inside.Force, outside.Force)
	}
	if (MetaBall{Center: ball.Center, Strength: 1}).Evaluate(r3.Vec{}) != ball.Evaluate(r3.Vec{}) {
		t.Error("zero radius should use default radius")
	}
}

func TestPointCharge(t *testing.T) {
	c := PointCharge{Center: r3.Vec{Y: 1}, Strength: 4}
	if got := c.Evaluate(r3.Vec{Y: 3}); math.Abs(got-1) > 1e-12 {
		t.Errorf("got %g, want 1", got)
	}
	if got := c.Evaluate(c.Center); got != maxForce {
		t.Errorf("center should clamp to %g, got %g", float64(maxForce), got)
	}
}

func TestMetaCube(t *testing.T) {
	cube := MetaCube{}
	if got := cube.Evaluate(r3.Vec{X: 0.5}); math.Abs(got-1024) > 1e-9 {
		t.Errorf("got %g, want 1024", got)
	}
	if got := cube.Evaluate(r3.Vec{X: 2, Y: 2, Z: 2}); math.Abs(got-math.Pow(0.5, 10)) > 1e-15 {
		t.Errorf("got %g, want %g", got, math.Pow(0.5, 10))
	}
	if got := cube.Evaluate(r3.Vec{}); got != maxForce {
		t.Errorf("origin got %g, want %g", got, float64(maxForce))
	}
}

func TestMetaTorus(t *testing.T) {
	torus := MetaTorus{Major: 4, Strength: 1}
	onRing := torus.Evaluate(r3.Vec{X: 4})
	if math.Abs(onRing-1) > 1e-12 {
		t.Errorf("centerline force got %g, want 1", onRing)
	}
	if got := torus.Evaluate(r3.Vec{Z: -4}); math.Abs(got-onRing) > 1e-12 {
		t.Errorf("torus not symmetric about y axis: %g != %g", got, onRing)
	}
	if got := torus.Evaluate(r3.Vec{Y: 1}); got != 0 {
		t.Errorf("axis force got %g, want 0", got)
	}
	zero := MetaTorus{Strength: 1}
	for _, p := range []r3.Vec{{X: 4}, {X: 1, Y: 0.5}, {Z: -6}} {
		if got, want := zero.Evaluate(p), torus.Evaluate(p); got != want {
			t.Errorf("zero major at %v got %g, want default major force %g", p, got, want)
		}
	}
}

func TestDistortions(t *testing.T) {
	ball := NewMetaBall(r3.Vec{Y: 1}, 1, r3.Vec{X: 1})
	twisted := Twist(ball, math.Pi)
	// At x=1.5 the twist is a half turn about x.
	p := r3.Vec{X: 1.5, Y: -1}
	if got, want := twisted.Evaluate(p), ball.Evaluate(r3.Vec{X: 1.5, Y: 1}); math.Abs(got-want) > 1e-12 {
		t.Errorf("twist got %g, want %g", got, want)
	}
	if twisted.Color() != ball.Tint {
		t.Errorf("distortion should forward color")
	}
	if got := Twist(MetaCube{}, 1).Color(); got != (r3.Vec{}) {
		t.Errorf("MetaCube has zero tint, got %v", got)
	}
	if got := Twist(PointCharge{}, 1).Color(); got != White {
		t.Errorf("uncolored inner force should be white, got %v", got)
	}

	moved := Translate(ball, r3.Vec{Z: 2})
	if got, want := moved.Evaluate(r3.Vec{Y: 1, Z: 2}), ball.Evaluate(ball.Center); got != want {
		t.Errorf("translate got %g, want %g", got, want)
	}
}

type sphereSDF float64

func (s sphereSDF) Evaluate(p r3.Vec) float64 { return r3.Norm(p) - float64(s) }
func (s sphereSDF) Bounds() r3.Box {
	r := float64(s)
	return r3.Box{Min: r3.Vec{X: -r, Y: -r, Z: -r}, Max: r3.Vec{X: r, Y: r, Z: r}}
}

func TestDistanceForce(t *testing.T) {
	d := DistanceForce{SDF: sphereSDF(2), Falloff: 1}
	for _, test := range []struct {
		p    r3.Vec
		want float64
	}{
		{r3.Vec{X: 2}, 0.5},
		{r3.Vec{X: 2.5}, 0.25},
		{r3.Vec{X: 10}, 0},
		{r3.Vec{}, 1},
	} {
		if got := d.Evaluate(test.p); math.Abs(got-test.want) > 1e-12 {
			t.Errorf("DistanceForce(%v) got %g, want %g", test.p, got, test.want)
		}
	}
}
