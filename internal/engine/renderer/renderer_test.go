package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshstage/internal/assets"
	"github.com/Faultbox/meshstage/internal/engine/mesh"
	"github.com/Faultbox/meshstage/internal/engine/scene"
)

type meshTable map[assets.GPUMeshID]*mesh.Resource

func (m meshTable) Mesh(gpu assets.GPUMeshID) (*mesh.Resource, bool) {
	res, ok := m[gpu]
	return res, ok
}

type nopDevice struct{}

func (nopDevice) CreateBuffer([]float32) uint32 { return 1 }
func (nopDevice) DeleteBuffer(uint32)           {}

func TestPlanSubstitutesDefaultMesh(t *testing.T) {
	def := &mesh.Resource{Positions: 1, VertexCount: 36}
	loaded := &mesh.Resource{Positions: 2, VertexCount: 3}
	gone := &mesh.Resource{Positions: 3, VertexCount: 6}
	gone.Destroy(nopDevice{})

	snap := &scene.Snapshot{Objects: []scene.Renderable{
		{Mesh: assets.DefaultMesh, Mode: 0},
		{Mesh: 1, Mode: 2, Model: mgl32.Translate3D(1, 2, 3)},
		{Mesh: 2, Mode: 3},
		{Mesh: 3, Mode: 4},
	}}
	calls := plan(snap, meshTable{1: loaded, 3: gone}, def)

	require.Len(t, calls, 4)
	assert.Same(t, def, calls[0].mesh)
	assert.Same(t, loaded, calls[1].mesh)
	assert.Same(t, def, calls[2].mesh, "unknown id draws the default mesh")
	assert.Same(t, def, calls[3].mesh, "destroyed mesh is never drawn")

	assert.Equal(t, int32(2), calls[1].mode)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), calls[1].model)
}

func TestPlanEmptySnapshot(t *testing.T) {
	assert.Empty(t, plan(&scene.Snapshot{}, meshTable{}, &mesh.Resource{}))
}

func TestUniformNamesMatchShaders(t *testing.T) {
	for _, name := range uniformNames {
		assert.True(t,
			containsUniform(name),
			"uniform %s is not declared in the scene shaders", name)
	}
}
