package render

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestAppendVertexData(t *testing.T) {
	tris := tetrahedron(r3.Vec{X: 1})
	tris[0].V[1].Color = r3.Vec{X: 0.25, Y: 0.5, Z: 1}
	data, err := AppendVertexData([]float32{42}, tris)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1+len(tris)*3*VertexStride {
		t.Fatalf("got %d floats", len(data))
	}
	v := data[1+VertexStride : 1+2*VertexStride]
	want := []float32{1, 1, 0, 0, 0, -1, 0.25, 0.5, 1}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("vertex data got %v, want %v", v, want)
			break
		}
	}

	tris[1].V[2].Pos.Y = math.NaN()
	short, err := AppendVertexData(nil, tris)
	if err == nil {
		t.Fatal("expected error for NaN vertex")
	}
	if len(short) != 5*VertexStride {
		t.Errorf("data written up to bad vertex got %d floats, want %d", len(short), 5*VertexStride)
	}
	tris[1].V[2].Pos.Y = 1e300
	if _, err := AppendVertexData(nil, tris); err == nil {
		t.Error("expected error for float32 overflow")
	}
}

func TestAppendEdgeData(t *testing.T) {
	a, b, c, d := r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, r3.Vec{Y: 1}
	o := &Octree{polys: []Triangle{tri(a, b, c), tri(a, c, d)}}
	data := AppendEdgeData(nil, o)
	// The shared diagonal is interior.
	if len(data) != 4*6 {
		t.Fatalf("got %d floats, want 4 segments", len(data))
	}
	for i := 0; i < len(data); i += 6 {
		p := r3.Vec{X: float64(data[i]), Y: float64(data[i+1])}
		q := r3.Vec{X: float64(data[i+3]), Y: float64(data[i+4])}
		if r3.Norm(r3.Sub(p, q)) != 1 {
			t.Errorf("segment %v %v is not a square side", p, q)
		}
	}
}

func TestAppendBoxData(t *testing.T) {
	r := newTestRefiner(t, twoBalls(6))
	r.Refine(0)
	o := r.Node(r.Roots()[0])
	data := AppendBoxData(nil, o)
	if len(data) != 12*6 {
		t.Fatalf("got %d floats", len(data))
	}
	side := float32(10.2)
	for i := 0; i < len(data); i += 6 {
		dx := math.Abs(float64(data[i] - data[i+3]))
		dy := math.Abs(float64(data[i+1] - data[i+4]))
		dz := math.Abs(float64(data[i+2] - data[i+5]))
		if math.Abs(dx+dy+dz-float64(side)) > 1e-5 {
			t.Errorf("box edge length %g, want %g", dx+dy+dz, side)
		}
	}
}
