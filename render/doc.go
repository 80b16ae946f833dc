// Package render extracts the isosurface of an implicit.ForceFunction
// as a triangle mesh by adaptive octree subdivision. Refinement is
// incremental so the surface may be displayed while it is refined.
package render
