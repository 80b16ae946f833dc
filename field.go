package implicit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCutoff is the isovalue of a new ForceFunction.
const DefaultCutoff = 0.5

// Sample is the field value at a point. Samples are immutable values
// and may be shared freely between octree nodes.
type Sample struct {
	Pos   r3.Vec
	Force float64
	// Color is the blended color of colored sources. Valid if HasColor is set.
	Color    r3.Vec
	HasColor bool
	// Normal is an optional precomputed surface normal hint.
	Normal    r3.Vec
	HasNormal bool
}

// ColorOr returns the sample color or def if the sample has none.
func (s Sample) ColorOr(def r3.Vec) r3.Vec {
	if s.HasColor {
		return s.Color
	}
	return def
}

// WithNormal returns a copy of s with a normal hint.
func (s Sample) WithNormal(n r3.Vec) Sample {
	s.Normal = n
	s.HasNormal = true
	return s
}

// ForceFunction sums the contributions of its forces and caches the
// resulting samples by position.
//
// Cache keys are exact positions. Callers that sample a regular lattice
// must generate coordinates so that a lattice point always has the same
// floating point representation, see render's lattice arithmetic.
type ForceFunction struct {
	forces  []Force
	cutoff  float64
	caching bool
	cache   map[r3.Vec]Sample
	evals   int
}

// NewForceFunction returns a field with the default cutoff and caching enabled.
func NewForceFunction(forces ...Force) *ForceFunction {
	f := &ForceFunction{
		cutoff:  DefaultCutoff,
		caching: true,
		cache:   make(map[r3.Vec]Sample),
	}
	for _, force := range forces {
		f.Add(force)
	}
	return f
}

// Add appends a force source and invalidates the cache.
func (f *ForceFunction) Add(force Force) *ForceFunction {
	if force == nil {
		panic("nil force")
	}
	f.forces = append(f.forces, force)
	f.Reset()
	return f
}

// Forces returns the sources of the field in evaluation order.
func (f *ForceFunction) Forces() []Force { return f.forces }

// Cutoff returns the isovalue separating hot from cold space.
func (f *ForceFunction) Cutoff() float64 { return f.cutoff }

// SetCutoff changes the isovalue. Colors depend on the cutoff so the
// sample cache is cleared.
func (f *ForceFunction) SetCutoff(cutoff float64) {
	if math.IsNaN(cutoff) || math.IsInf(cutoff, 0) {
		panic("invalid cutoff")
	}
	if cutoff != f.cutoff {
		f.cutoff = cutoff
		f.Reset()
	}
}

// IsHot reports whether the sample lies inside the surface.
func (f *ForceFunction) IsHot(s Sample) bool {
	return s.Force > f.cutoff
}

// Reset clears the sample cache.
func (f *ForceFunction) Reset() {
	for k := range f.cache {
		delete(f.cache, k)
	}
}

// SetCaching enables or disables the sample cache. Finite difference
// normal estimation disables it temporarily so probe points do not
// pollute the cache.
func (f *ForceFunction) SetCaching(enabled bool) { f.caching = enabled }

// Caching reports whether new samples are cached.
func (f *ForceFunction) Caching() bool { return f.caching }

// CacheLen returns the number of cached samples.
func (f *ForceFunction) CacheLen() int { return len(f.cache) }

// Evaluations returns how many times the sources were evaluated at a
// point, that is the number of cache misses since creation.
func (f *ForceFunction) Evaluations() int { return f.evals }

// Targets returns the positions of point-like sources.
func (f *ForceFunction) Targets() []r3.Vec {
	var targets []r3.Vec
	seen := make(map[r3.Vec]struct{})
	for _, force := range f.forces {
		loc, ok := force.(Locator)
		if !ok {
			continue
		}
		p := loc.Position()
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		targets = append(targets, p)
	}
	return targets
}

// Sample returns the field sample at p. The same point always maps to
// the same sample while the forces and cutoff are unchanged.
func (f *ForceFunction) Sample(p r3.Vec) Sample {
	if s, ok := f.cache[p]; ok {
		return s
	}
	s := f.evaluate(p)
	if f.caching {
		f.cache[p] = s
	}
	return s
}

func (f *ForceFunction) evaluate(p r3.Vec) Sample {
	f.evals++
	var (
		sum         float64
		weightSum   float64
		weightColor r3.Vec
	)
	for _, force := range f.forces {
		v := force.Evaluate(p)
		sum += v
		if c, ok := force.(Colorer); ok {
			// Sources near the cutoff dominate perceived surface color.
			w := math.Abs(v - f.cutoff)
			weightSum += w
			weightColor = r3.Add(weightColor, r3.Scale(w, c.Color()))
		}
	}
	s := Sample{Pos: p, Force: sum}
	if weightSum > 0 {
		s.Color = r3.Scale(1/weightSum, weightColor)
		s.HasColor = true
	}
	return s
}
