package render

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNoCoarseNeighbours(t *testing.T) {
	r := newTestRefiner(t, twoBalls(1), WithTargetLevel(5))
	r.RefineCompletely()
	checked := 0
	for o := range r.KnownOctrees() {
		if o.Level() != r.TargetLevel() {
			t.Fatalf("finished node at level %d", o.Level())
		}
		for face := 0; face < numFaces; face++ {
			if !o.HasInterestingFace(r.f, face) {
				continue
			}
			pt := o.PointJustBeyondFace(face)
			if o.Encloses(pt) {
				t.Fatalf("point %v beyond face %d inside node", pt, face)
			}
			cid, ok := r.findContainer(o.ID(), pt)
			if !ok {
				t.Fatalf("no container beyond face %d of %v", face, o.Box())
			}
			c := r.Node(cid)
			if c.Level() != r.TargetLevel() || c.State() != Finished {
				t.Errorf("neighbour beyond face %d is level %d %v", face, c.Level(), c.State())
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no faces checked")
	}
}

func TestFindContainer(t *testing.T) {
	r := newTestRefiner(t, twoBalls(6), WithTargetLevel(2))
	r.RefineCompletely()
	root := r.Roots()[0]
	for _, p := range []r3.Vec{{X: -6}, {X: -8.1, Y: 1.2, Z: -3}, {X: 0.5, Y: 5, Z: 5}} {
		id, ok := r.findContainer(root, p)
		if !ok {
			t.Fatalf("no container for %v", p)
		}
		if !r.Node(id).Encloses(p) {
			t.Errorf("container %v does not enclose %v", r.Node(id).Box(), p)
		}
		if kids, ok := r.Node(id).Children(); ok && r.Node(id).Level() < r.TargetLevel() {
			t.Errorf("container has children %v", kids)
		}
	}
	if _, ok := r.findContainer(root, r3.Vec{X: 100}); ok {
		t.Error("found container outside the root grid")
	}
}

func TestCrackRepairSchedulesCoarseNeighbour(t *testing.T) {
	r := newTestRefiner(t, twoBalls(6), WithTargetLevel(3))
	r.RefineCompletely()
	coarse := NoNode
	for id := NodeID(0); int(id) < r.Stats().Nodes; id++ {
		n := r.Node(id)
		if _, sub := n.Children(); !sub && n.Level() < r.TargetLevel() && !n.IsInteresting(r.f) {
			coarse = id
			break
		}
	}
	if coarse == NoNode {
		t.Fatal("no discarded coarse cell")
	}
	if got := r.Node(coarse).State(); got != Unexamined {
		t.Errorf("discarded cell in state %v", got)
	}
	c := r.Node(coarse)
	pt := r3.Scale(0.5, r3.Add(c.Min(), c.Max()))
	id, ok := r.findContainer(coarse, pt)
	if !ok || id != coarse {
		t.Fatalf("container of %v got %d, want %d", pt, id, coarse)
	}
	// Pretend a finer neighbour found surface leaving through a face
	// into the coarse cell.
	c.addTarget(pt)
	r.schedule(coarse)
	r.RefineCompletely()
	kids, ok := r.Node(coarse).Children()
	if !ok {
		t.Fatal("scheduled coarse cell was not subdivided")
	}
	n := 0
	for _, kid := range (*childIDs)(&kids).flat() {
		if len(r.Node(kid).Targets()) > 0 {
			n++
		}
	}
	if n == 0 {
		t.Error("target not inherited by children")
	}
}
