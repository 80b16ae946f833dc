package render

import (
	"strconv"

	"github.com/soypat/implicit"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy selects how a cell's corner classification becomes triangles.
type Strategy uint8

const (
	// Tetrahedra splits each cell into five tetrahedra. Its output is
	// crack free and consistently oriented on uniform grids.
	Tetrahedra Strategy = iota
	// MarchingCubes uses a 256 case table.
	MarchingCubes
)

func (s Strategy) String() string {
	switch s {
	case Tetrahedra:
		return "tetrahedra"
	case MarchingCubes:
		return "marching cubes"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// ParseStrategy parses the String form of a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "tetrahedra", "tet":
		return Tetrahedra, true
	case "marching cubes", "cubes", "mc":
		return MarchingCubes, true
	}
	return 0, false
}

type polygonizer struct {
	f        *implicit.ForceFunction
	strategy Strategy
	smooth   bool
	outward  bool
	log      *zap.SugaredLogger
}

// crossing is an edge that straddles the cutoff.
type crossing struct {
	cold, hot implicit.Sample
	v         Vertex
}

func (c crossing) sharesEndpoint(d crossing) bool {
	return c.cold.Pos == d.cold.Pos || c.hot.Pos == d.hot.Pos
}

func (p *polygonizer) edge(a, b implicit.Sample) (crossing, bool) {
	ha, hb := p.f.IsHot(a), p.f.IsHot(b)
	if ha == hb {
		return crossing{}, false
	}
	if ha {
		a, b = b, a
	}
	v, ok := Interpolate(a, b, p.f.Cutoff(), p.smooth)
	return crossing{cold: a, hot: b, v: v}, ok
}

// hint approximates the field gradient along the edge.
func (p *polygonizer) hint(c crossing) r3.Vec {
	var h r3.Vec
	if c.cold.HasNormal && c.hot.HasNormal {
		h = r3.Scale(0.5, r3.Add(c.cold.Normal, c.hot.Normal))
	} else {
		h = r3.Sub(c.hot.Pos, c.cold.Pos)
	}
	if p.outward {
		h = r3.Scale(-1, h)
	}
	return h
}

// addOriented appends the triangle abc flipped to agree with the
// summed edge hints. Degenerate triangles are dropped.
func (p *polygonizer) addOriented(dst []Triangle, a, b, c crossing) []Triangle {
	t := Triangle{V: [3]Vertex{a.v, b.v, c.v}}
	n := t.positions().Normal()
	if t.positions().Degenerate(0) {
		return dst
	}
	hint := r3.Add(p.hint(a), r3.Add(p.hint(b), p.hint(c)))
	if r3.Dot(n, hint) < 0 {
		t.V[1], t.V[2] = t.V[2], t.V[1]
		n = r3.Scale(-1, n)
	}
	t.Normal = r3.Unit(n)
	return append(dst, t)
}

func (p *polygonizer) polygonize(o *Octree) []Triangle {
	switch p.strategy {
	case MarchingCubes:
		return p.cubes(o)
	default:
		return p.tetrahedra(o)
	}
}

var tetraEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

func (p *polygonizer) tetrahedra(o *Octree) []Triangle {
	var (
		dst  []Triangle
		flip uint8
	)
	if o.isOdd() {
		flip = oddParityMask
	}
	for _, tet := range tetrahedra {
		var (
			arr [4]crossing
			n   int
		)
		for _, e := range tetraEdges {
			c, ok := p.edge(o.corner(tet[e[0]]^flip), o.corner(tet[e[1]]^flip))
			if !ok {
				continue
			}
			if n < len(arr) {
				arr[n] = c
			}
			n++
		}
		switch n {
		case 0:
		case 3:
			dst = p.addOriented(dst, arr[0], arr[1], arr[2])
		case 4:
			// Order the crossings into a cycle: arr[0] shares an endpoint
			// with two crossings and none with the opposite one.
			a, b, c, d := arr[0], arr[1], arr[2], arr[3]
			switch {
			case !a.sharesEndpoint(b):
				b, c = c, b
			case !a.sharesEndpoint(d):
				c, d = d, c
			}
			dst = p.addOriented(dst, a, b, c)
			dst = p.addOriented(dst, a, c, d)
		default:
			p.log.Warnw("unexpected tetrahedron crossing count", "crossings", n, "level", o.level, "cell", o.cell)
		}
	}
	return dst
}

func (p *polygonizer) cubes(o *Octree) []Triangle {
	var config uint8
	for bit := uint8(0); bit < 8; bit++ {
		if p.f.IsHot(o.corner(bit)) {
			config |= 1 << bit
		}
	}
	var dst []Triangle
	edges := mcTable[config]
	for i := 0; i+2 < len(edges); i += 3 {
		var tri [3]crossing
		ok := true
		for v := range tri {
			e := cubeEdges[edges[i+v]]
			tri[v], ok = p.edge(o.corner(e[0]), o.corner(e[1]))
			if !ok {
				break
			}
		}
		if ok {
			dst = p.addWound(dst, tri[0], tri[1], tri[2])
		}
	}
	return dst
}

// addWound appends the triangle abc keeping the table winding, which
// faces the hot side, so fans of one loop stay consistently oriented.
// Triangles with coincident vertices are dropped. The normal falls back
// to the edge hints when the triangle has no area.
func (p *polygonizer) addWound(dst []Triangle, a, b, c crossing) []Triangle {
	t := Triangle{V: [3]Vertex{a.v, b.v, c.v}}
	if t.V[0].Pos == t.V[1].Pos || t.V[1].Pos == t.V[2].Pos || t.V[0].Pos == t.V[2].Pos {
		return dst
	}
	if p.outward {
		t.V[1], t.V[2] = t.V[2], t.V[1]
	}
	n := t.positions().Normal()
	if r3.Norm(n) == 0 {
		n = r3.Add(p.hint(a), r3.Add(p.hint(b), p.hint(c)))
		if r3.Norm(n) == 0 {
			return dst
		}
	}
	t.Normal = r3.Unit(n)
	return append(dst, t)
}
