// Package assets loads mesh descriptions off the render path and tracks the
// GPU meshes they turn into.
package assets

import "fmt"

// LogicalMeshID is the id an object holds to reference a mesh regardless of
// its load state. Ids are handed out in increasing order and never reused.
type LogicalMeshID uint64

// GPUMeshID identifies an uploaded, drawable mesh. It lives in a separate
// namespace from LogicalMeshID.
type GPUMeshID uint32

// DefaultMesh is the GPUMeshID meaning "draw the built-in mesh". Live meshes
// are numbered from 1.
const DefaultMesh GPUMeshID = 0

// LoadState is the load state of one logical mesh: Ready, Loading, Failed,
// Loaded or Evicted. Switch on the concrete type.
type LoadState interface {
	fmt.Stringer
	loadState()
}

// Ready means no fetch was ever issued for the id. A requested id never
// reports Ready again.
type Ready struct{}

// Loading means the fetch has not resolved yet.
type Loading struct {
	Source string
	cell   <-chan fetchResult
}

// Failed is terminal. A retry is a new Request with a new id.
type Failed struct {
	Source string
	Err    error
}

// Loaded means the mesh is uploaded and drawable as GPU.
type Loaded struct {
	Source string
	GPU    GPUMeshID
}

// Evicted means the mesh was loaded, then reclaimed once no object
// referenced it. It resolves to the default mesh; reload with a new Request.
type Evicted struct {
	Source string
}

func (Ready) loadState()   {}
func (Loading) loadState() {}
func (Failed) loadState()  {}
func (Loaded) loadState()  {}
func (Evicted) loadState() {}

func (Ready) String() string     { return "ready" }
func (s Loading) String() string { return "loading " + s.Source }
func (s Failed) String() string  { return fmt.Sprintf("failed %s: %v", s.Source, s.Err) }
func (s Loaded) String() string  { return fmt.Sprintf("loaded %s as gpu mesh %d", s.Source, s.GPU) }
func (s Evicted) String() string { return "evicted " + s.Source }
