package implicit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type constForce struct {
	v     float64
	c     r3.Vec
	calls *int
}

func (f constForce) Evaluate(r3.Vec) float64 {
	if f.calls != nil {
		*f.calls++
	}
	return f.v
}

type colorForce struct {
	constForce
}

func (f colorForce) Color() r3.Vec { return f.c }

func TestSampleCache(t *testing.T) {
	var calls int
	f := NewForceFunction(constForce{v: 1, calls: &calls})
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	a := f.Sample(p)
	b := f.Sample(p)
	if a != b {
		t.Errorf("cached sample differs: %+v != %+v", a, b)
	}
	if calls != 1 || f.Evaluations() != 1 {
		t.Errorf("expected one evaluation, got %d calls and %d evaluations", calls, f.Evaluations())
	}
	if f.CacheLen() != 1 {
		t.Errorf("cache length got %d, want 1", f.CacheLen())
	}

	f.SetCaching(false)
	f.Sample(r3.Vec{X: -1})
	if f.CacheLen() != 1 {
		t.Errorf("uncached sample stored in cache")
	}
	f.Sample(p)
	if calls != 2 {
		t.Errorf("cached point should not be reevaluated while caching is off, got %d calls", calls)
	}
	f.SetCaching(true)

	f.Reset()
	if f.CacheLen() != 0 {
		t.Errorf("reset did not clear the cache")
	}
	f.Sample(p)
	if calls != 3 {
		t.Errorf("expected reevaluation after reset, got %d calls", calls)
	}
}

func TestSetCutoffClearsCache(t *testing.T) {
	f := NewForceFunction(constForce{v: 1})
	f.Sample(r3.Vec{})
	f.SetCutoff(f.Cutoff())
	if f.CacheLen() != 1 {
		t.Error("unchanged cutoff cleared cache")
	}
	f.SetCutoff(0.25)
	if f.CacheLen() != 0 {
		t.Error("changed cutoff did not clear cache")
	}
}

func TestIsHot(t *testing.T) {
	f := NewForceFunction()
	for _, test := range []struct {
		force float64
		hot   bool
	}{
		{0.4, false},
		{0.5, false},
		{0.5000001, true},
		{3, true},
	} {
		if got := f.IsHot(Sample{Force: test.force}); got != test.hot {
			t.Errorf("IsHot(%g) got %v, want %v", test.force, got, test.hot)
		}
	}
}

func TestColorBlend(t *testing.T) {
	red := r3.Vec{X: 1}
	blue := r3.Vec{Z: 1}
	f := NewForceFunction(
		colorForce{constForce{v: 0.9, c: red}},
		colorForce{constForce{v: 0.3, c: blue}},
		constForce{v: 0.1},
	)
	s := f.Sample(r3.Vec{})
	if math.Abs(s.Force-1.3) > 1e-12 {
		t.Errorf("force got %g, want 1.3", s.Force)
	}
	if !s.HasColor {
		t.Fatal("expected sample color")
	}
	want := r3.Vec{X: 2.0 / 3, Z: 1.0 / 3}
	if r3.Norm(r3.Sub(s.Color, want)) > 1e-12 {
		t.Errorf("color got %v, want %v", s.Color, want)
	}

	s = NewForceFunction(constForce{v: 2}).Sample(r3.Vec{})
	if s.HasColor || s.ColorOr(White) != White {
		t.Errorf("uncolored field should default to white, got %+v", s)
	}
}

func TestTargets(t *testing.T) {
	a := NewMetaBall(r3.Vec{X: 1}, 1, White)
	b := NewMetaBall(r3.Vec{X: -1}, 1, White)
	f := NewForceFunction(a, MetaCube{}, b, a, PointCharge{Center: r3.Vec{Y: 2}, Strength: 1})
	got := f.Targets()
	want := []r3.Vec{{X: 1}, {X: -1}, {Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("targets got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target %d got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAddNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewForceFunction().Add(nil)
}
