package render

import "gonum.org/v1/gonum/spatial/r3"

// checkForMissedFaces finishes the pending cells. The surface leaves a
// cell through each face with a sign change; when the cell beyond such a
// face is coarser the surface there was missed, so the coarse cell gets
// the point as a target and is scheduled for refinement unless already
// queued. It returns the number of cells scheduled.
func (r *Refiner) checkForMissedFaces() (scheduled int) {
	for _, id := range r.almostFinished {
		n := &r.nodes[id]
		n.state = Finished
		for face := 0; face < numFaces; face++ {
			if !n.HasInterestingFace(r.f, face) {
				continue
			}
			pt := n.PointJustBeyondFace(face)
			cid, ok := r.findContainer(id, pt)
			if !ok {
				r.log.Debugw("no container beyond face", "node", id, "face", face, "point", pt)
				continue
			}
			c := &r.nodes[cid]
			if c.level >= n.level {
				continue
			}
			// A queued container still needs the target or its child
			// beyond the face may be discarded as uninteresting.
			c.addTarget(pt)
			if c.state != ScheduledForRefinement {
				r.schedule(cid)
				scheduled++
			}
		}
	}
	r.almostFinished = r.almostFinished[:0]
	return scheduled
}

// findContainer returns the finest cell at or above the target level
// that encloses pt, searching from the nearest enclosing ancestor of
// cousin and falling back to the roots.
func (r *Refiner) findContainer(cousin NodeID, pt r3.Vec) (NodeID, bool) {
	for a := r.nodes[cousin].parent; a != NoNode; a = r.nodes[a].parent {
		if r.nodes[a].Encloses(pt) {
			return r.descend(a, pt), true
		}
	}
	for _, root := range r.roots {
		if r.nodes[root].Encloses(pt) {
			return r.descend(root, pt), true
		}
	}
	return NoNode, false
}

func (r *Refiner) descend(id NodeID, pt r3.Vec) NodeID {
	for {
		n := &r.nodes[id]
		if n.children == nil || n.level >= r.targetLevel {
			return id
		}
		next := NoNode
		for _, kid := range n.children.flat() {
			if r.nodes[kid].Encloses(pt) {
				next = kid
				break
			}
		}
		if next == NoNode {
			return id
		}
		id = next
	}
}
