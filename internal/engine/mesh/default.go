package mesh

import "github.com/Faultbox/meshstage/pkg/formats"

// cube faces: outward normal, face color, and the four corners in
// counter-clockwise order seen from outside.
var cubeFaces = [6]struct {
	normal  [3]float32
	color   [3]float32
	corners [4][3]float32
}{
	{[3]float32{0, 0, 1}, [3]float32{0.9, 0.3, 0.3}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
	{[3]float32{0, 0, -1}, [3]float32{0.3, 0.9, 0.3}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
	{[3]float32{1, 0, 0}, [3]float32{0.3, 0.3, 0.9}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
	{[3]float32{-1, 0, 0}, [3]float32{0.9, 0.9, 0.3}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
	{[3]float32{0, 1, 0}, [3]float32{0.3, 0.9, 0.9}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
	{[3]float32{0, -1, 0}, [3]float32{0.9, 0.3, 0.9}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
}

// Default returns the built-in mesh drawn for objects whose own mesh is not
// (or no longer) loaded: a colored cube spanning [-1, 1] on every axis.
func Default() *formats.MeshDescription {
	desc := &formats.MeshDescription{
		VertexTextureCoords: []float32{},
	}

	for _, f := range cubeFaces {
		// Two triangles per face: 0-1-2 and 0-2-3.
		for _, idx := range [6]int{0, 1, 2, 0, 2, 3} {
			c := f.corners[idx]
			desc.VertexPositions = append(desc.VertexPositions, c[0], c[1], c[2])
			desc.VertexNormals = append(desc.VertexNormals, f.normal[0], f.normal[1], f.normal[2])
			desc.VertexFrontColors = append(desc.VertexFrontColors, f.color[0], f.color[1], f.color[2])
		}
	}
	return desc
}
