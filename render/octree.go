package render

import (
	"strconv"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeID indexes an Octree in its Refiner's node arena.
type NodeID int32

// NoNode is the parent of root nodes.
const NoNode NodeID = -1

// State of an octree node in the refinement schedule.
type State uint8

const (
	Unexamined State = iota
	ScheduledForRefinement
	Refined
	ScheduledForMissedFacesCheck
	Finished
)

func (s State) String() string {
	switch s {
	case Unexamined:
		return "unexamined"
	case ScheduledForRefinement:
		return "scheduled for refinement"
	case Refined:
		return "refined"
	case ScheduledForMissedFacesCheck:
		return "scheduled for missed faces check"
	case Finished:
		return "finished"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Octree is a cubic cell of the adaptive subdivision. Cells are owned by
// a Refiner and referenced by NodeID.
type Octree struct {
	id    NodeID
	level int
	// cell is the integer lattice coordinate of the minimum corner,
	// in units of the cell size at level.
	cell     [3]int
	min, max r3.Vec
	corners  [2][2][2]implicit.Sample
	parent   NodeID
	children *childIDs
	targets  []r3.Vec
	polys    []Triangle
	// polysDone is set once polys is computed; an empty result is valid.
	polysDone bool
	state     State
}

func (o *Octree) ID() NodeID     { return o.id }
func (o *Octree) Level() int     { return o.level }
func (o *Octree) Min() r3.Vec    { return o.min }
func (o *Octree) Max() r3.Vec    { return o.max }
func (o *Octree) Box() r3.Box    { return r3.Box{Min: o.min, Max: o.max} }
func (o *Octree) State() State   { return o.state }
func (o *Octree) Parent() NodeID { return o.parent }

// Cell returns the integer lattice coordinate of the minimum corner at the node's level.
func (o *Octree) Cell() [3]int { return o.cell }

// Corner returns the corner sample at offsets i, j, k in {0, 1}.
func (o *Octree) Corner(i, j, k int) implicit.Sample { return o.corners[i][j][k] }

func (o *Octree) corner(bit uint8) implicit.Sample {
	i, j, k := cornerIJK(bit)
	return o.corners[i][j][k]
}

// Children returns the child ids and true if the node was subdivided.
func (o *Octree) Children() ([2][2][2]NodeID, bool) {
	if o.children == nil {
		return [2][2][2]NodeID{}, false
	}
	return [2][2][2]NodeID(*o.children), true
}

// Targets returns the points that forced this node into refinement.
func (o *Octree) Targets() []r3.Vec { return o.targets }

// Polygons returns the node's triangles. Cells yielded by
// Refiner.KnownOctrees are polygonized; for any other cell use
// Refiner.Polygons.
func (o *Octree) Polygons() []Triangle { return o.polys }

// Encloses reports whether p lies in the closed cell.
func (o *Octree) Encloses(p r3.Vec) bool {
	return d3.Box(o.Box()).Contains(p)
}

func (o *Octree) addTarget(p r3.Vec) {
	for _, t := range o.targets {
		if t == p {
			return
		}
	}
	o.targets = append(o.targets, p)
}

// IsInteresting reports whether the node holds targets or its corners
// disagree on hotness.
func (o *Octree) IsInteresting(f *implicit.ForceFunction) bool {
	if len(o.targets) > 0 {
		return true
	}
	first := f.IsHot(o.corners[0][0][0])
	for bit := uint8(1); bit < 8; bit++ {
		if f.IsHot(o.corner(bit)) != first {
			return true
		}
	}
	return false
}

// HasInterestingFace reports whether the corners of face disagree on hotness.
func (o *Octree) HasInterestingFace(f *implicit.ForceFunction, face int) bool {
	c := cubeFaces[face]
	first := f.IsHot(o.corner(c[0]))
	for _, bit := range c[1:] {
		if f.IsHot(o.corner(bit)) != first {
			return true
		}
	}
	return false
}

// PointJustBeyondFace returns the face center pushed 10% of the
// center to face distance out of the cell.
func (o *Octree) PointJustBeyondFace(face int) r3.Vec {
	var faceCenter r3.Vec
	for _, bit := range cubeFaces[face] {
		faceCenter = r3.Add(faceCenter, o.corner(bit).Pos)
	}
	faceCenter = r3.Scale(0.25, faceCenter)
	center := d3.Box(o.Box()).Center()
	return r3.Add(center, r3.Scale(1.1, r3.Sub(faceCenter, center)))
}

// isOdd returns the tetrahedral split parity of the cell.
func (o *Octree) isOdd() bool {
	return (o.cell[0]+o.cell[1]+o.cell[2])&1 != 0
}

// newOctree returns a node with the given corners. The node adopts the
// possible targets it encloses.
func newOctree(id, parent NodeID, level int, cell [3]int, corners [2][2][2]implicit.Sample, possibleTargets []r3.Vec) Octree {
	o := Octree{
		id:      id,
		level:   level,
		cell:    cell,
		corners: corners,
		parent:  parent,
		min:     corners[0][0][0].Pos,
		max:     corners[1][1][1].Pos,
	}
	for _, p := range possibleTargets {
		if o.Encloses(p) {
			o.addTarget(p)
		}
	}
	return o
}
