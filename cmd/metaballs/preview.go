package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Scale down images relative to Full HD resolution.
	FHDscaler     = 0.4
	width, height = int(1920. * FHDscaler), int(1080. * FHDscaler) // output width and height in pixels
)

type viewConfig struct {
	// what position (point) to look at
	lookat r3.Vec
	// which way is up (direction)
	up r3.Vec
	// where the camera/eye located at (point)
	eyepos r3.Vec
	far    float64
	near   float64
}

var defaultView = viewConfig{
	up:     r3.Vec{Y: 1},
	eyepos: r3.Vec{X: 1.2, Y: 1.8, Z: 2.4},
	near:   1,
	far:    10,
}

// savePreview renders tris with Phong shading and their vertex colors.
// Triangles facing the hot side are flipped so back face culling keeps
// the outside of the surface.
func savePreview(filename string, tris []render.Triangle, outward bool) error {
	if len(tris) == 0 {
		return errors.New("no triangles to render")
	}
	mesh := fauxgl.NewTriangleMesh(fauxglTriangles(tris, !outward))
	const (
		scale = 2  // optional supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	view := defaultView
	var (
		eye    = fauxgl.V(view.eyepos.X, view.eyepos.Y, view.eyepos.Z)
		center = fauxgl.V(view.lookat.X, view.lookat.Y, view.lookat.Z)
		up     = fauxgl.V(view.up.X, view.up.Y, view.up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.near, view.far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	// Discard selects the vertex colors.
	shader.ObjectColor = fauxgl.Discard
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(width), uint(height), image, resize.Bilinear)
	return fauxgl.SavePNG(filename, image)
}

func fauxglTriangles(tris []render.Triangle, flip bool) []*fauxgl.Triangle {
	out := make([]*fauxgl.Triangle, 0, len(tris))
	for _, t := range tris {
		n := fauxgl.V(t.Normal.X, t.Normal.Y, t.Normal.Z)
		if flip {
			t.V[1], t.V[2] = t.V[2], t.V[1]
			n = n.Negate()
		}
		var v [3]fauxgl.Vertex
		for i, tv := range t.V {
			v[i] = fauxgl.Vertex{
				Position: fauxgl.V(tv.Pos.X, tv.Pos.Y, tv.Pos.Z),
				Normal:   n,
				Color:    fauxgl.Color{R: tv.Color.X, G: tv.Color.Y, B: tv.Color.Z, A: 1},
			}
		}
		out = append(out, &fauxgl.Triangle{V1: v[0], V2: v[1], V3: v[2]})
	}
	return out
}
