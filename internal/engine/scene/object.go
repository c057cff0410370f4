// Package scene holds the user-editable object list and turns it into the
// immutable per-frame snapshot the renderer draws.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/pkg/math"
)

// Object is one independently transformed, independently shaded model.
// There is no hierarchy: every object's matrix is built from its own fields.
type Object struct {
	ID   uuid.UUID
	Name string

	Translation mgl32.Vec3
	Rotation    mgl32.Vec3 // Euler degrees, each in (-180, 180]
	Rotating    mgl32.Vec3 // degrees per second
	Scale       mgl32.Vec3
	Shear       mgl32.Vec3 // degrees, expected in (0, 180)
	Animated    bool

	Shading ShadingMode
	MeshRef *assets.LogicalMeshID // nil draws the default mesh
}

// Clone returns a copy of o with a new identity.
func (o Object) Clone() Object {
	o.ID = uuid.New()
	if o.MeshRef != nil {
		ref := *o.MeshRef
		o.MeshRef = &ref
	}
	return o
}

// SetMesh points the object at a logical mesh.
func (o *Object) SetMesh(id assets.LogicalMeshID) {
	o.MeshRef = &id
}

// ClearMesh makes the object draw the default mesh.
func (o *Object) ClearMesh() {
	o.MeshRef = nil
}

// Tick advances the rotation animation by dt seconds. Rotating speeds are
// assumed to stay below 360 degrees per tick.
func (o *Object) Tick(dt float32) {
	if !o.Animated {
		return
	}
	o.Rotation = math.WrapEuler(o.Rotation.Add(o.Rotating.Mul(dt)))
}

// ModelMatrix composes the object's transform stack.
func (o *Object) ModelMatrix() mgl32.Mat4 {
	return math.Compose(o.Scale, o.Rotation, o.Shear, o.Translation)
}

// Objects is the application-owned object list.
type Objects struct {
	list []Object
}

// Spawn appends a clone of template and returns it for further edits.
func (s *Objects) Spawn(template Object) *Object {
	s.list = append(s.list, template.Clone())
	return &s.list[len(s.list)-1]
}

// Clear removes every object.
func (s *Objects) Clear() {
	s.list = nil
}

// Remove deletes the object with the given id.
func (s *Objects) Remove(id uuid.UUID) bool {
	for i := range s.list {
		if s.list[i].ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return true
		}
	}
	return false
}

// Last returns the most recently spawned object, or nil.
func (s *Objects) Last() *Object {
	if len(s.list) == 0 {
		return nil
	}
	return &s.list[len(s.list)-1]
}

// Len returns the number of objects.
func (s *Objects) Len() int {
	return len(s.list)
}

// All returns the objects in draw order. The slice aliases the list.
func (s *Objects) All() []Object {
	return s.list
}

// Tick animates every object.
func (s *Objects) Tick(dt float32) {
	for i := range s.list {
		s.list[i].Tick(dt)
	}
}

// MeshRefs lists the logical mesh ids referenced by objects right now.
func (s *Objects) MeshRefs() []assets.LogicalMeshID {
	refs := make([]assets.LogicalMeshID, 0, len(s.list))
	for i := range s.list {
		if ref := s.list[i].MeshRef; ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs
}
