package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/internal/config"
	"github.com/Faultbox/meshstage/internal/engine/camera"
	"github.com/Faultbox/meshstage/internal/engine/lighting"
	"github.com/Faultbox/meshstage/internal/engine/scene"
	"github.com/Faultbox/meshstage/internal/logger"
	"github.com/Faultbox/meshstage/pkg/math"
)

// World is everything the frame loop mutates, minus the window and GL state.
type World struct {
	Objects  scene.Objects
	Template scene.Object
	Camera   camera.Camera
	Ambient  lighting.Ambient
	Registry *assets.Registry

	// Sources is the list the load action cycles through.
	Sources    []string
	nextSource int

	log *zap.Logger
}

// NewWorld builds the initial scene from cfg. Configured objects with a
// source start loading immediately.
func NewWorld(cfg *config.Config, reg *assets.Registry) *World {
	w := &World{
		Template: objectFromConfig(cfg.Scene.Template),
		Camera:   camera.New(math.ToVec3(cfg.Scene.Camera.Position), cfg.Scene.Camera.FovY),
		Ambient: lighting.Ambient{
			Color: cfg.Scene.Ambient.Color,
			Ka:    cfg.Scene.Ambient.Ka,
		}.Clamp(),
		Registry: reg,
		Sources:  cfg.Scene.Sources,
		log:      logger.Named("viewer"),
	}

	for _, oc := range cfg.Scene.Objects {
		obj := w.Objects.Spawn(objectFromConfig(oc))
		if oc.Source != "" {
			obj.SetMesh(reg.Request(oc.Source))
		}
	}
	return w
}

func objectFromConfig(oc config.ObjectConfig) scene.Object {
	return scene.Object{
		Name:        oc.Name,
		Translation: math.ToVec3(oc.Translation),
		Rotation:    math.WrapEuler(math.ToVec3(oc.Rotation)),
		Rotating:    math.ToVec3(oc.Rotating),
		Scale:       math.ToVec3(oc.Scale),
		Shear:       math.ToVec3(oc.Shear),
		Animated:    oc.Animated,
		Shading:     oc.Shading,
	}
}

// Step advances one frame and returns the snapshot to draw. The order is
// fixed: animate, drain finished fetches, reclaim meshes no object
// references, assemble.
func (w *World) Step(dt float32) *scene.Snapshot {
	w.Objects.Tick(dt)
	w.Registry.DrainCompletedLoads()
	w.Registry.ReclaimUnreferenced(w.Objects.MeshRefs())
	return scene.Assemble(w.Objects.All(), w.Camera, w.Ambient, w.Registry)
}

// Spawn adds a clone of the template, offset so new objects fan out along X.
func (w *World) Spawn() *scene.Object {
	obj := w.Objects.Spawn(w.Template)
	obj.Translation = obj.Translation.Add(mgl32.Vec3{float32(w.Objects.Len()-1) * 2.5, 0, 0})
	w.log.Debug("object spawned", zap.Stringer("id", obj.ID), zap.Int("objects", w.Objects.Len()))
	return obj
}

// Clear removes every object. Their meshes are reclaimed on the next Step.
func (w *World) Clear() {
	w.Objects.Clear()
	w.log.Debug("objects cleared")
}

// CycleShading moves the last object to the next shading mode.
func (w *World) CycleShading() {
	if obj := w.Objects.Last(); obj != nil {
		obj.Shading = obj.Shading.Next()
		w.log.Debug("shading changed", zap.Stringer("id", obj.ID), zap.Stringer("mode", obj.Shading))
	}
}

// ToggleAnimation starts or stops the last object's rotation.
func (w *World) ToggleAnimation() {
	if obj := w.Objects.Last(); obj != nil {
		obj.Animated = !obj.Animated
	}
}

// LoadNext requests the next configured source for the last object,
// spawning one when the scene is empty. The object keeps drawing the default
// mesh until the fetch lands.
func (w *World) LoadNext() (assets.LogicalMeshID, bool) {
	if len(w.Sources) == 0 {
		w.log.Warn("no mesh sources configured")
		return 0, false
	}

	obj := w.Objects.Last()
	if obj == nil {
		obj = w.Spawn()
	}

	source := w.Sources[w.nextSource%len(w.Sources)]
	w.nextSource++

	id := w.Registry.Request(source)
	obj.SetMesh(id)
	w.log.Info("loading mesh",
		zap.Stringer("object", obj.ID),
		zap.Uint64("id", uint64(id)),
		zap.String("source", source),
	)
	return id, true
}

// Pan moves the camera by whole input steps.
func (w *World) Pan(right, up, back float32) {
	w.Camera.HandleMovement(right, up, back)
}

// Zoom narrows (positive) or widens (negative) the field of view.
func (w *World) Zoom(steps float32) {
	w.Camera.HandleZoom(steps)
}
