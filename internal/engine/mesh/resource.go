// Package mesh owns the GPU-side vertex buffers of a single mesh.
package mesh

import (
	"fmt"

	"github.com/Faultbox/meshstage/pkg/formats"
)

// Device creates and deletes GPU vertex buffers. GLDevice is the real
// implementation; tests substitute a counting fake.
type Device interface {
	CreateBuffer(data []float32) uint32
	DeleteBuffer(buf uint32)
}

// Resource holds the position, color and normal buffers of one uploaded
// triangle-list mesh. It is created once by Upload and destroyed exactly once.
type Resource struct {
	Positions   uint32
	Colors      uint32
	Normals     uint32
	VertexCount int32

	destroyed bool
}

// Upload creates GPU buffers for a validated description. Must run on the
// thread that owns the GL context.
func Upload(dev Device, desc *formats.MeshDescription) (*Resource, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("uploading mesh: %w", err)
	}

	return &Resource{
		Positions:   dev.CreateBuffer(desc.VertexPositions),
		Colors:      dev.CreateBuffer(desc.VertexFrontColors),
		Normals:     dev.CreateBuffer(desc.VertexNormals),
		VertexCount: int32(desc.VertexCount()),
	}, nil
}

// Destroy releases the buffers. Destroying twice is a bookkeeping bug in the
// caller and panics.
func (r *Resource) Destroy(dev Device) {
	if r.destroyed {
		panic(fmt.Sprintf("mesh resource %d/%d/%d destroyed twice", r.Positions, r.Colors, r.Normals))
	}
	dev.DeleteBuffer(r.Positions)
	dev.DeleteBuffer(r.Colors)
	dev.DeleteBuffer(r.Normals)
	r.destroyed = true
}

// Destroyed reports whether Destroy has run.
func (r *Resource) Destroyed() bool {
	return r.destroyed
}
