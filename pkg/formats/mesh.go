// Package formats provides parsers for the mesh description files the viewer loads.
package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mesh description errors.
var (
	ErrEmptyMesh         = errors.New("mesh has no vertex positions")
	ErrMisalignedMesh    = errors.New("vertex positions do not form whole triangles")
	ErrAttributeMismatch = errors.New("vertex attribute length does not match positions")
	ErrUnknownMeshFormat = errors.New("unknown mesh format")
)

// MeshFormat identifies the encoding of a mesh description.
type MeshFormat int

const (
	MeshFormatJSON MeshFormat = iota
	MeshFormatYAML
)

// String returns the format name.
func (f MeshFormat) String() string {
	switch f {
	case MeshFormatJSON:
		return "json"
	case MeshFormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// MeshFormatFromPath picks a format from a file extension. Anything that is
// not .yaml/.yml is treated as JSON, which is what model servers hand out.
func MeshFormatFromPath(path string) MeshFormat {
	// Drop URL query strings before looking at the extension.
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return MeshFormatYAML
	default:
		return MeshFormatJSON
	}
}

// MeshDescription is a triangle-list mesh: vertex i belongs to triangle i/3.
// All per-vertex attributes are flat xyz (or rgb) float sequences.
type MeshDescription struct {
	VertexPositions     []float32 `yaml:"vertex_positions"`
	VertexNormals       []float32 `yaml:"vertex_normals"`
	VertexFrontColors   []float32 `yaml:"vertex_frontcolors"`
	VertexBackColors    []float32 `yaml:"vertex_backcolors"`     // accepted, not rendered
	VertexTextureCoords []float32 `yaml:"vertex_texture_coords"` // optional
}

// jsonMesh accepts both the camelCase keys used by the classic WebGL model
// files and snake_case keys.
type jsonMesh struct {
	Positions      []float32 `json:"vertexPositions"`
	Normals        []float32 `json:"vertexNormals"`
	FrontColors    []float32 `json:"vertexFrontcolors"`
	BackColors     []float32 `json:"vertexBackcolors"`
	TextureCoords  []float32 `json:"vertexTextureCoords"`
	SPositions     []float32 `json:"vertex_positions"`
	SNormals       []float32 `json:"vertex_normals"`
	SFrontColors   []float32 `json:"vertex_frontcolors"`
	SBackColors    []float32 `json:"vertex_backcolors"`
	STextureCoords []float32 `json:"vertex_texture_coords"`
}

func firstNonNil(a, b []float32) []float32 {
	if a != nil {
		return a
	}
	return b
}

// VertexCount returns the number of vertices (positions / 3).
func (m *MeshDescription) VertexCount() int {
	return len(m.VertexPositions) / 3
}

// TriangleCount returns the number of triangles in the list.
func (m *MeshDescription) TriangleCount() int {
	return m.VertexCount() / 3
}

// Validate checks that the description can be uploaded as a triangle list.
func (m *MeshDescription) Validate() error {
	n := len(m.VertexPositions)
	if n == 0 {
		return ErrEmptyMesh
	}
	if n%9 != 0 {
		return fmt.Errorf("%w: %d floats", ErrMisalignedMesh, n)
	}
	if len(m.VertexNormals) != n {
		return fmt.Errorf("%w: normals %d, positions %d", ErrAttributeMismatch, len(m.VertexNormals), n)
	}
	if len(m.VertexFrontColors) != n {
		return fmt.Errorf("%w: front colors %d, positions %d", ErrAttributeMismatch, len(m.VertexFrontColors), n)
	}
	return nil
}

// ParseMesh decodes and validates a mesh description.
func ParseMesh(data []byte, format MeshFormat) (*MeshDescription, error) {
	var m MeshDescription

	switch format {
	case MeshFormatJSON:
		var raw jsonMesh
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding json mesh: %w", err)
		}
		m = MeshDescription{
			VertexPositions:     firstNonNil(raw.Positions, raw.SPositions),
			VertexNormals:       firstNonNil(raw.Normals, raw.SNormals),
			VertexFrontColors:   firstNonNil(raw.FrontColors, raw.SFrontColors),
			VertexBackColors:    firstNonNil(raw.BackColors, raw.SBackColors),
			VertexTextureCoords: firstNonNil(raw.TextureCoords, raw.STextureCoords),
		}
	case MeshFormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding yaml mesh: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMeshFormat, format)
	}

	if m.VertexTextureCoords == nil {
		m.VertexTextureCoords = []float32{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
