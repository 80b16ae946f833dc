package render

import (
	"iter"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultTargetLevel is the subdivision depth of a new Refiner.
	DefaultTargetLevel = 3
	// MaxTargetLevel bounds the depth so lattice coordinates stay exact.
	MaxTargetLevel = 30
	// FrameBudget is a typical per frame refinement budget.
	FrameBudget = 250 * time.Millisecond
)

// Refiner adaptively subdivides a box into octree cells until every
// cell the surface passes through reaches the target level. Work is
// split into time bounded Refine calls so a caller can display the
// surface while it is refined.
//
// A Refiner is not safe for concurrent use.
type Refiner struct {
	f    *implicit.ForceFunction
	box  d3.Box
	poly polygonizer
	// smooth overrides the process wide interpolation mode when set.
	smooth *bool

	// Root grid. Roots are cubes of side scale at level 0 lattice
	// coordinates [0,fx)x[0,fy)x[0,fz).
	scale      float64
	fx, fy, fz int

	targetLevel    int
	nodes          []Octree
	roots          []NodeID
	inProgress     []NodeID
	head           int // index of the first queued node in inProgress.
	almostFinished []NodeID
	finished       []NodeID

	clock clock.Clock
	log   *zap.SugaredLogger
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithTargetLevel sets the subdivision depth of cells holding surface.
func WithTargetLevel(level int) Option {
	return func(r *Refiner) { r.targetLevel = level }
}

// WithStrategy sets the polygonization strategy. Tetrahedra is the default.
func WithStrategy(s Strategy) Option {
	return func(r *Refiner) { r.poly.strategy = s }
}

// WithLogger sets the logger. Logging is disabled by default.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Refiner) { r.log = log }
}

// WithClock sets the clock measuring Refine budgets.
func WithClock(c clock.Clock) Option {
	return func(r *Refiner) { r.clock = c }
}

// WithSmoothInterpolation overrides SmoothEdgeInterpolation for this Refiner.
func WithSmoothInterpolation(smooth bool) Option {
	return func(r *Refiner) { r.smooth = &smooth }
}

// WithOutwardNormals orients triangles to face cold space. By default
// triangle normals face the hot side of the surface.
func WithOutwardNormals(outward bool) Option {
	return func(r *Refiner) { r.poly.outward = outward }
}

// NewRefiner returns a Refiner of the surface of f inside the box min, max.
// Roots are laid out as cubes with side equal to the shortest box side,
// so the covered region may extend past max.
func NewRefiner(min, max r3.Vec, f *implicit.ForceFunction, opts ...Option) (*Refiner, error) {
	if f == nil {
		return nil, errors.New("nil force function")
	}
	box := d3.Box{Min: min, Max: max}
	if box.Empty() || !d3.IsFinite(min) || !d3.IsFinite(max) {
		return nil, errors.Errorf("empty or inverted refinement box %v %v", min, max)
	}
	r := &Refiner{
		f:           f,
		box:         box,
		targetLevel: DefaultTargetLevel,
		clock:       clock.New(),
		log:         zap.NewNop().Sugar(),
		poly:        polygonizer{f: f, strategy: Tetrahedra},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.targetLevel < 0 || r.targetLevel > MaxTargetLevel {
		return nil, errors.Errorf("target level %d out of range [0,%d]", r.targetLevel, MaxTargetLevel)
	}
	if r.poly.strategy != Tetrahedra && r.poly.strategy != MarchingCubes {
		return nil, errors.Errorf("unknown strategy %v", r.poly.strategy)
	}
	r.poly.log = r.log
	size := box.Size()
	r.scale = d3.Min(size)
	r.fx = int(math.Ceil(size.X / r.scale))
	r.fy = int(math.Ceil(size.Y / r.scale))
	r.fz = int(math.Ceil(size.Z / r.scale))
	return r, nil
}

// ForceFunction returns the field being polygonized.
func (r *Refiner) ForceFunction() *implicit.ForceFunction { return r.f }

// TargetLevel returns the subdivision depth of cells holding surface.
func (r *Refiner) TargetLevel() int { return r.targetLevel }

// Roots returns the level 0 cells. It is empty before the first Refine.
func (r *Refiner) Roots() []NodeID { return r.roots }

// Node returns the cell with the given id. The pointer is valid until
// the next call to a method that refines or resets.
func (r *Refiner) Node(id NodeID) *Octree { return &r.nodes[id] }

// IsRefined reports whether the refinement queue has drained. Crack
// repair may still be pending.
func (r *Refiner) IsRefined() bool {
	return len(r.roots) > 0 && r.queued() == 0
}

// KnownOctrees yields the cells queued for refinement followed by the
// finished cells. Together they cover the surface at the current
// refinement progress. Yielded cells are polygonized so Octree.Polygons
// and AppendEdgeData see their triangles, coarse ones for queued cells.
func (r *Refiner) KnownOctrees() iter.Seq[*Octree] {
	return func(yield func(*Octree) bool) {
		for _, id := range r.inProgress[r.head:] {
			r.polygons(id)
			if !yield(&r.nodes[id]) {
				return
			}
		}
		for _, id := range r.finished {
			r.polygons(id)
			if !yield(&r.nodes[id]) {
				return
			}
		}
	}
}

// Polygons returns the triangles of the cell id, polygonizing it on
// first use.
func (r *Refiner) Polygons(id NodeID) []Triangle { return r.polygons(id) }

// Stats summarizes refinement progress.
type Stats struct {
	Nodes         int // cells allocated.
	Roots         int
	Queued        int // cells waiting for refinement.
	PendingChecks int // finished cells pending the missed faces check.
	Finished      int
	Triangles     int // triangles in finished cells.
}

// Stats returns the refinement progress.
func (r *Refiner) Stats() Stats {
	s := Stats{
		Nodes:         len(r.nodes),
		Roots:         len(r.roots),
		Queued:        r.queued(),
		PendingChecks: len(r.almostFinished),
		Finished:      len(r.finished),
	}
	for _, id := range r.finished {
		s.Triangles += len(r.nodes[id].polys)
	}
	return s
}

// Reset clears the field cache and all cells, then seeds new roots.
func (r *Refiner) Reset() {
	r.f.Reset()
	r.nodes = r.nodes[:0]
	r.roots = r.roots[:0]
	r.clearSchedule()
	r.seedRoots()
}

// Refine subdivides queued cells until the queue drains or budget
// elapses, then runs crack repair if the queue drained. Cells scheduled
// by crack repair wait for the next call. Refine returns whether the
// set of known cells changed.
func (r *Refiner) Refine(budget time.Duration) bool {
	return r.refine(r.clock.Now().Add(budget), true)
}

// RefineCompletely refines until no work is left.
func (r *Refiner) RefineCompletely() {
	for len(r.roots) == 0 || r.queued() > 0 || len(r.almostFinished) > 0 {
		r.refine(time.Time{}, false)
	}
}

func (r *Refiner) refine(deadline time.Time, bounded bool) (changed bool) {
	start := r.clock.Now()
	if len(r.roots) == 0 {
		r.seedRoots()
		changed = true
	}
	processed := 0
	for r.queued() > 0 && (!bounded || r.clock.Now().Before(deadline)) {
		r.refineNode(r.pop())
		processed++
	}
	scheduled := 0
	if r.queued() == 0 && len(r.almostFinished) > 0 {
		scheduled = r.checkForMissedFaces()
	}
	if processed > 0 || scheduled > 0 {
		r.log.Debugw("refine",
			"processed", processed,
			"queued", r.queued(),
			"finished", len(r.finished),
			"repairs", scheduled,
			"nodes", len(r.nodes),
			"elapsed", r.clock.Since(start),
		)
	}
	return changed || processed > 0 || scheduled > 0
}

// SetTargetLevel changes the subdivision depth and recomputes the
// schedule from the roots, keeping already subdivided cells. It returns
// false and does nothing if level is unchanged or out of range.
func (r *Refiner) SetTargetLevel(level int) bool {
	if level == r.targetLevel || level < 0 || level > MaxTargetLevel {
		return false
	}
	r.targetLevel = level
	if len(r.roots) == 0 {
		return true
	}
	r.clearSchedule()
	for _, id := range r.roots {
		r.reschedule(id)
	}
	r.log.Debugw("target level changed", "level", level, "queued", r.queued(), "finished", len(r.finished))
	return true
}

func (r *Refiner) reschedule(id NodeID) {
	n := &r.nodes[id]
	switch {
	case n.level < r.targetLevel && n.children != nil:
		n.state = Refined
		for _, kid := range n.children.flat() {
			r.reschedule(kid)
		}
	case n.level < r.targetLevel:
		if n.parent == NoNode || n.IsInteresting(r.f) {
			r.schedule(id)
		} else {
			n.state = Unexamined
		}
	case n.level == r.targetLevel && r.hasPolygons(id):
		r.finish(id)
	default:
		n.state = Unexamined
	}
}

func (r *Refiner) clearSchedule() {
	r.inProgress = r.inProgress[:0]
	r.head = 0
	r.almostFinished = r.almostFinished[:0]
	r.finished = r.finished[:0]
}

func (r *Refiner) queued() int { return len(r.inProgress) - r.head }

func (r *Refiner) schedule(id NodeID) {
	r.inProgress = append(r.inProgress, id)
	r.nodes[id].state = ScheduledForRefinement
}

func (r *Refiner) pop() NodeID {
	id := r.inProgress[r.head]
	r.head++
	if r.head == len(r.inProgress) {
		r.inProgress = r.inProgress[:0]
		r.head = 0
	} else if r.head > 1024 && r.head > len(r.inProgress)/2 {
		n := copy(r.inProgress, r.inProgress[r.head:])
		r.inProgress = r.inProgress[:n]
		r.head = 0
	}
	return id
}

func (r *Refiner) finish(id NodeID) {
	r.finished = append(r.finished, id)
	r.almostFinished = append(r.almostFinished, id)
	r.nodes[id].state = ScheduledForMissedFacesCheck
}

// latticePos returns the position of lattice point c at level. Scaling by
// a power of two is exact so a point has the same coordinates at every level.
func (r *Refiner) latticePos(level int, c [3]int) r3.Vec {
	step := math.Ldexp(r.scale, -level)
	return r3.Vec{
		X: r.box.Min.X + float64(c[0])*step,
		Y: r.box.Min.Y + float64(c[1])*step,
		Z: r.box.Min.Z + float64(c[2])*step,
	}
}

func (r *Refiner) seedRoots() {
	nx, ny, nz := r.fx+1, r.fy+1, r.fz+1
	grid := make([]implicit.Sample, nx*ny*nz)
	at := func(x, y, z int) implicit.Sample { return grid[(x*ny+y)*nz+z] }
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				grid[(x*ny+y)*nz+z] = r.f.Sample(r.latticePos(0, [3]int{x, y, z}))
			}
		}
	}
	targets := r.f.Targets()
	for x := 0; x < r.fx; x++ {
		for y := 0; y < r.fy; y++ {
			for z := 0; z < r.fz; z++ {
				var corners [2][2][2]implicit.Sample
				for i := 0; i < 2; i++ {
					for j := 0; j < 2; j++ {
						for k := 0; k < 2; k++ {
							corners[i][j][k] = at(x+i, y+j, z+k)
						}
					}
				}
				id := NodeID(len(r.nodes))
				r.nodes = append(r.nodes, newOctree(id, NoNode, 0, [3]int{x, y, z}, corners, targets))
				r.roots = append(r.roots, id)
				switch {
				case r.targetLevel > 0:
					r.schedule(id)
				case r.hasPolygons(id):
					r.finish(id)
				}
			}
		}
	}
	r.log.Debugw("seeded roots", "roots", len(r.roots), "scale", r.scale, "grid", [3]int{r.fx, r.fy, r.fz})
}

func (r *Refiner) refineNode(id NodeID) {
	if r.nodes[id].children == nil {
		grid := r.sampleChildren(id)
		r.addChildren(id, &grid)
	}
	n := &r.nodes[id]
	n.state = Refined
	for _, kid := range n.children.flat() {
		switch {
		case r.nodes[kid].level < r.targetLevel && r.nodes[kid].IsInteresting(r.f):
			r.schedule(kid)
		case r.hasPolygons(kid):
			r.finish(kid)
		}
	}
}

// sampleChildren returns the 3x3x3 sample grid of the children of id.
// The 8 outer corners are the node's own corners; only the 19 new
// lattice points are sampled.
func (r *Refiner) sampleChildren(id NodeID) (grid [3][3][3]implicit.Sample) {
	n := &r.nodes[id]
	level := n.level + 1
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				if x != 1 && y != 1 && z != 1 {
					grid[x][y][z] = n.corners[x/2][y/2][z/2]
					continue
				}
				c := [3]int{2*n.cell[0] + x, 2*n.cell[1] + y, 2*n.cell[2] + z}
				grid[x][y][z] = r.f.Sample(r.latticePos(level, c))
			}
		}
	}
	return grid
}

func (r *Refiner) addChildren(id NodeID, grid *[3][3][3]implicit.Sample) {
	parent := r.nodes[id]
	var kids childIDs
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				var corners [2][2][2]implicit.Sample
				for a := 0; a < 2; a++ {
					for b := 0; b < 2; b++ {
						for c := 0; c < 2; c++ {
							corners[a][b][c] = grid[i+a][j+b][k+c]
						}
					}
				}
				cell := [3]int{2*parent.cell[0] + i, 2*parent.cell[1] + j, 2*parent.cell[2] + k}
				kid := NodeID(len(r.nodes))
				r.nodes = append(r.nodes, newOctree(kid, id, parent.level+1, cell, corners, parent.targets))
				kids[i][j][k] = kid
			}
		}
	}
	r.nodes[id].children = &kids
}

type childIDs [2][2][2]NodeID

func (c *childIDs) flat() [8]NodeID {
	return [8]NodeID{c[0][0][0], c[0][0][1], c[0][1][0], c[0][1][1], c[1][0][0], c[1][0][1], c[1][1][0], c[1][1][1]}
}

func (r *Refiner) smoothEdges() bool {
	if r.smooth != nil {
		return *r.smooth
	}
	return SmoothEdgeInterpolation()
}

// polygons returns the memoized triangles of id.
func (r *Refiner) polygons(id NodeID) []Triangle {
	n := &r.nodes[id]
	if !n.polysDone {
		p := r.poly
		p.smooth = r.smoothEdges()
		n.polys = p.polygonize(n)
		n.polysDone = true
	}
	return n.polys
}

func (r *Refiner) hasPolygons(id NodeID) bool { return len(r.polygons(id)) > 0 }
