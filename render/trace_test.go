package render

import (
	"math"
	"testing"

	"github.com/soypat/implicit"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTrace(t *testing.T) {
	const tol = 0.05
	iso := 5 * (1 - math.Sqrt(1.0/3))
	f := implicit.NewForceFunction(implicit.NewMetaBall(r3.Vec{}, 1, red))
	r := newTestRefiner(t, f, WithTargetLevel(5))
	r.RefineCompletely()
	cached := f.CacheLen()

	ray := Ray{Origin: r3.Vec{X: -10, Y: 0.013, Z: 0.021}, Dir: r3.Vec{X: 1}}
	hits := r.Trace(ray)
	if len(hits) < 2 {
		t.Fatalf("got %d hits, want at least 2", len(hits))
	}
	first, last := hits[0], hits[len(hits)-1]
	if math.Abs(first.T-(10-iso)) > tol || math.Abs(last.T-(10+iso)) > tol {
		t.Errorf("hits at %g and %g, want %g and %g", first.T, last.T, 10-iso, 10+iso)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].T < hits[i-1].T {
			t.Fatal("hits not sorted")
		}
	}
	// Normals face the hot side by default.
	if first.Normal.X < 0.9 || last.Normal.X > -0.9 {
		t.Errorf("hit normals got %v and %v", first.Normal, last.Normal)
	}
	if r3.Norm(r3.Sub(first.Color, red)) > 1e-9 {
		t.Errorf("hit color got %v, want %v", first.Color, red)
	}
	if !r.Node(first.Node).Encloses(first.Pos) {
		t.Error("hit outside its node")
	}
	if !f.Caching() || f.CacheLen() != cached {
		t.Errorf("trace changed the cache: caching=%v len %d -> %d", f.Caching(), cached, f.CacheLen())
	}

	miss := r.Trace(Ray{Origin: r3.Vec{X: -10, Y: 4.5}, Dir: r3.Vec{X: 1}})
	if len(miss) != 0 {
		t.Errorf("expected miss, got %d hits", len(miss))
	}
}

func TestTraceOutward(t *testing.T) {
	f := implicit.NewForceFunction(implicit.NewMetaBall(r3.Vec{}, 1, red))
	r := newTestRefiner(t, f, WithTargetLevel(4), WithOutwardNormals(true))
	r.RefineCompletely()
	hits := r.Trace(Ray{Origin: r3.Vec{Y: 0.011, Z: 10.3}, Dir: r3.Vec{Z: -1}})
	if len(hits) == 0 {
		t.Fatal("no hits")
	}
	if hits[0].Normal.Z < 0.9 {
		t.Errorf("outward normal got %v", hits[0].Normal)
	}
}
