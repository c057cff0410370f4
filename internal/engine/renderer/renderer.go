// Package renderer draws a scene snapshot with the single shared shading program.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/internal/engine/lighting"
	"github.com/Faultbox/meshstage/internal/engine/mesh"
	"github.com/Faultbox/meshstage/internal/engine/renderer/shaders"
	"github.com/Faultbox/meshstage/internal/engine/scene"
	"github.com/Faultbox/meshstage/internal/engine/shader"
	"github.com/Faultbox/meshstage/internal/logger"
)

// Uniform names of the scene program.
const (
	uModel          = "uModel"
	uViewProj       = "uViewProj"
	uMode           = "uMode"
	uCameraPos      = "uCameraPos"
	uLightPositions = "uLightPositions"
	uLightColors    = "uLightColors"
	uKd             = "uKd"
	uKs             = "uKs"
	uShininess      = "uShininess"
	uAmbient        = "uAmbient"
)

var uniformNames = []string{
	uModel, uViewProj, uMode, uCameraPos, uLightPositions,
	uLightColors, uKd, uKs, uShininess, uAmbient,
}

// Vertex attribute locations, matching scene.vert.
const (
	attribPosition = 0
	attribColor    = 1
	attribNormal   = 2
)

// MeshSource looks up live GPU meshes. The asset registry implements it.
type MeshSource interface {
	Mesh(gpu assets.GPUMeshID) (*mesh.Resource, bool)
}

// Viewport is the render target handed to Draw each frame.
type Viewport struct {
	Framebuffer uint32
	Width       int32
	Height      int32
}

// Renderer owns the scene program, the shared vertex array and the default mesh.
type Renderer struct {
	device      mesh.Device
	program     *shader.Program
	vao         uint32
	defaultMesh *mesh.Resource
	log         *zap.Logger
}

// New initializes GL, compiles the scene program and uploads the default mesh.
// Must be called after the GL context is current.
func New(dev mesh.Device) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{device: dev, log: logger.Named("renderer")}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := shader.New(shaders.SceneVertex, shaders.SceneFragment, uniformNames...)
	if err != nil {
		return nil, fmt.Errorf("compiling scene program: %w", err)
	}
	r.program = program

	gl.GenVertexArrays(1, &r.vao)

	r.defaultMesh, err = mesh.Upload(dev, mesh.Default())
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("uploading default mesh: %w", err)
	}

	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	return r, nil
}

// drawCall is one resolved per-object draw.
type drawCall struct {
	model mgl32.Mat4
	mode  int32
	mesh  *mesh.Resource
}

// plan resolves every renderable to a live mesh, substituting def for the
// default id or for ids that are no longer live. Order is preserved.
func plan(snap *scene.Snapshot, meshes MeshSource, def *mesh.Resource) []drawCall {
	calls := make([]drawCall, len(snap.Objects))
	for i, obj := range snap.Objects {
		res := def
		if obj.Mesh != assets.DefaultMesh {
			if live, ok := meshes.Mesh(obj.Mesh); ok && !live.Destroyed() {
				res = live
			}
		}
		calls[i] = drawCall{model: obj.Model, mode: obj.Mode, mesh: res}
	}
	return calls
}

// Draw renders snap into vp. It never blocks and never touches the registry
// beyond looking up live meshes.
func (r *Renderer) Draw(snap *scene.Snapshot, meshes MeshSource, vp Viewport) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, vp.Framebuffer)
	gl.Viewport(0, 0, max(vp.Width, 1), max(vp.Height, 1))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	defer gl.Disable(gl.DEPTH_TEST)

	r.program.Use()
	gl.BindVertexArray(r.vao)
	defer gl.BindVertexArray(0)

	viewProj := snap.Camera().ViewProjection(vp.Width, vp.Height)
	gl.UniformMatrix4fv(r.program.Uniform(uViewProj), 1, false, &viewProj[0])
	gl.Uniform3fv(r.program.Uniform(uCameraPos), 1, &snap.CameraPos[0])

	positions, colors := lighting.Flatten(lighting.Fixed)
	gl.Uniform3fv(r.program.Uniform(uLightPositions), lighting.PointLightCount, &positions[0])
	gl.Uniform3fv(r.program.Uniform(uLightColors), lighting.PointLightCount, &colors[0])
	gl.Uniform1f(r.program.Uniform(uKd), lighting.Kd)
	gl.Uniform1f(r.program.Uniform(uKs), lighting.Ks)
	gl.Uniform1f(r.program.Uniform(uShininess), lighting.Shininess)

	ambient := snap.Ambient()
	gl.Uniform3fv(r.program.Uniform(uAmbient), 1, &ambient[0])

	modelLoc := r.program.Uniform(uModel)
	modeLoc := r.program.Uniform(uMode)
	for _, call := range plan(snap, meshes, r.defaultMesh) {
		bindAttribute(attribPosition, call.mesh.Positions)
		bindAttribute(attribColor, call.mesh.Colors)
		bindAttribute(attribNormal, call.mesh.Normals)

		gl.UniformMatrix4fv(modelLoc, 1, false, &call.model[0])
		gl.Uniform1i(modeLoc, call.mode)
		gl.DrawArrays(gl.TRIANGLES, 0, call.mesh.VertexCount)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func bindAttribute(location, buf uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.VertexAttribPointer(location, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(location)
}

// Close releases the program, the vertex array and the default mesh.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.defaultMesh != nil && !r.defaultMesh.Destroyed() {
		r.defaultMesh.Destroy(r.device)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.program != nil {
		r.program.Delete()
	}
}
