package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/internal/engine/camera"
	"github.com/Faultbox/meshstage/internal/engine/lighting"
)

// Resolver maps an object's mesh reference to the GPU mesh to draw.
type Resolver interface {
	Resolve(ref *assets.LogicalMeshID) assets.GPUMeshID
}

// Renderable is one object as the renderer sees it.
type Renderable struct {
	Model mgl32.Mat4
	Mode  int32
	Mesh  assets.GPUMeshID // assets.DefaultMesh draws the built-in mesh
}

// Snapshot is the immutable per-frame copy of everything the renderer needs.
// It holds no references into the mutable object list.
type Snapshot struct {
	Objects    []Renderable
	AmbientRGB [3]float32
	AmbientKa  float32
	CameraPos  mgl32.Vec3
	FovY       float32
}

// Assemble builds the frame snapshot from the current objects. It only
// reads; every mesh reference goes through res.
func Assemble(objects []Object, cam camera.Camera, ambient lighting.Ambient, res Resolver) *Snapshot {
	snap := &Snapshot{
		Objects:    make([]Renderable, len(objects)),
		AmbientRGB: ambient.Color,
		AmbientKa:  ambient.Ka,
		CameraPos:  cam.Position,
		FovY:       cam.FovY,
	}

	for i := range objects {
		o := &objects[i]
		snap.Objects[i] = Renderable{
			Model: o.ModelMatrix(),
			Mode:  int32(o.Shading),
			Mesh:  res.Resolve(o.MeshRef),
		}
	}
	return snap
}

// Camera rebuilds the camera the snapshot was taken with.
func (s *Snapshot) Camera() camera.Camera {
	return camera.Camera{Position: s.CameraPos, FovY: s.FovY}
}

// Ambient returns the ambient term Color * Ka.
func (s *Snapshot) Ambient() [3]float32 {
	return lighting.Ambient{Color: s.AmbientRGB, Ka: s.AmbientKa}.Term()
}
