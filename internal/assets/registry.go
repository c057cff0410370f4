package assets

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshstage/internal/engine/mesh"
	"github.com/Faultbox/meshstage/internal/logger"
	"github.com/Faultbox/meshstage/pkg/formats"
)

// fetchResult is written exactly once into a one-shot cell by the fetch
// goroutine and read exactly once by the registry owner.
type fetchResult struct {
	desc *formats.MeshDescription
	err  error
}

// Stats summarizes the registry for logging.
type Stats struct {
	Loading    int
	Failed     int
	Loaded     int
	Evicted    int
	LiveMeshes int
}

// Registry maps logical mesh ids to load states and owns the live GPU
// meshes. All methods must be called from the goroutine that owns the GL
// context; only fetches run elsewhere.
type Registry struct {
	device  mesh.Device
	fetcher Fetcher

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	nextLogical LogicalMeshID
	nextGPU     GPUMeshID

	states map[LogicalMeshID]LoadState
	meshes map[GPUMeshID]*mesh.Resource
	owners map[GPUMeshID]LogicalMeshID
}

// NewRegistry creates an empty registry. Buffers are created on device and
// sources are resolved through fetcher.
func NewRegistry(device mesh.Device, fetcher Fetcher) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		device:  device,
		fetcher: fetcher,
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.Named("assets"),
		nextGPU: DefaultMesh + 1,
		states:  make(map[LogicalMeshID]LoadState),
		meshes:  make(map[GPUMeshID]*mesh.Resource),
		owners:  make(map[GPUMeshID]LogicalMeshID),
	}
}

// Request starts fetching source and returns the new id, already Loading.
// Requesting a source again (for instance after a failure) always yields a
// fresh id.
func (r *Registry) Request(source string) LogicalMeshID {
	id := r.nextLogical
	r.nextLogical++

	cell := make(chan fetchResult, 1)
	r.states[id] = Loading{Source: source, cell: cell}

	go func(ctx context.Context) {
		var res fetchResult
		defer func() {
			if p := recover(); p != nil {
				res = fetchResult{err: fmt.Errorf("fetch panicked: %v", p)}
			}
			cell <- res
		}()
		res.desc, res.err = r.fetcher.Fetch(ctx, source)
	}(r.ctx)

	r.log.Debug("mesh requested", zap.Uint64("id", uint64(id)), zap.String("source", source))
	return id
}

// State returns the load state of id. Only ids never issued report Ready.
func (r *Registry) State(id LogicalMeshID) LoadState {
	if st, ok := r.states[id]; ok {
		return st
	}
	return Ready{}
}

// DrainCompletedLoads polls every Loading entry without blocking and moves
// resolved ones to Loaded (uploading on the calling goroutine) or Failed.
// Call at most once per frame, before assembling the scene. Returns the
// number of transitions.
func (r *Registry) DrainCompletedLoads() int {
	var pending []LogicalMeshID
	for id, st := range r.states {
		if _, ok := st.(Loading); ok {
			pending = append(pending, id)
		}
	}
	slices.Sort(pending)

	n := 0
	for _, id := range pending {
		st := r.states[id].(Loading)
		select {
		case res := <-st.cell:
			r.states[id] = r.complete(id, st.Source, res)
			n++
		default:
		}
	}
	return n
}

func (r *Registry) complete(id LogicalMeshID, source string, res fetchResult) LoadState {
	if res.err == nil && res.desc == nil {
		res.err = fmt.Errorf("fetch returned no mesh")
	}
	if res.err != nil {
		r.log.Warn("mesh load failed",
			zap.Uint64("id", uint64(id)),
			zap.String("source", source),
			zap.Error(res.err),
		)
		return Failed{Source: source, Err: res.err}
	}

	uploaded, err := mesh.Upload(r.device, res.desc)
	if err != nil {
		r.log.Warn("mesh upload rejected",
			zap.Uint64("id", uint64(id)),
			zap.String("source", source),
			zap.Error(err),
		)
		return Failed{Source: source, Err: err}
	}

	gpu := r.nextGPU
	r.nextGPU++
	r.meshes[gpu] = uploaded
	r.owners[gpu] = id

	r.log.Info("mesh loaded",
		zap.Uint64("id", uint64(id)),
		zap.Uint32("gpu", uint32(gpu)),
		zap.String("source", source),
		zap.Int32("vertices", uploaded.VertexCount),
	)
	return Loaded{Source: source, GPU: gpu}
}

// Resolve maps an object's mesh reference to the GPU mesh to draw. Every
// case other than a Loaded, still-live mesh (nil reference, Loading, Failed,
// evicted, unknown) yields DefaultMesh.
func (r *Registry) Resolve(ref *LogicalMeshID) GPUMeshID {
	if ref == nil {
		return DefaultMesh
	}
	st, ok := r.states[*ref].(Loaded)
	if !ok {
		return DefaultMesh
	}
	if _, live := r.meshes[st.GPU]; !live {
		return DefaultMesh
	}
	return st.GPU
}

// ReclaimUnreferenced destroys every live GPU mesh that none of refs
// resolves to and marks the logical ids that owned them Evicted. refs must
// be read from the current object list. Returns the number of meshes
// destroyed.
func (r *Registry) ReclaimUnreferenced(refs []LogicalMeshID) int {
	marked := make(map[GPUMeshID]struct{}, len(refs))
	for _, id := range refs {
		if gpu := r.Resolve(&id); gpu != DefaultMesh {
			marked[gpu] = struct{}{}
		}
	}

	n := 0
	for gpu, res := range r.meshes {
		if _, ok := marked[gpu]; ok {
			continue
		}
		res.Destroy(r.device)
		delete(r.meshes, gpu)

		owner := r.owners[gpu]
		delete(r.owners, gpu)
		loaded, _ := r.states[owner].(Loaded)
		source := loaded.Source
		r.states[owner] = Evicted{Source: source}
		if f, ok := r.fetcher.(Forgetter); ok {
			f.Forget(source)
		}

		r.log.Debug("mesh reclaimed",
			zap.Uint32("gpu", uint32(gpu)),
			zap.Uint64("id", uint64(owner)),
			zap.String("source", source),
		)
		n++
	}
	return n
}

// Mesh returns the live resource for gpu.
func (r *Registry) Mesh(gpu GPUMeshID) (*mesh.Resource, bool) {
	res, ok := r.meshes[gpu]
	return res, ok
}

// Stats counts entries per state.
func (r *Registry) Stats() Stats {
	s := Stats{LiveMeshes: len(r.meshes)}
	for _, st := range r.states {
		switch st.(type) {
		case Loading:
			s.Loading++
		case Failed:
			s.Failed++
		case Loaded:
			s.Loaded++
		case Evicted:
			s.Evicted++
		}
	}
	return s
}

// Close cancels in-flight fetches and destroys every live GPU mesh. Pending
// fetch goroutines finish on their own; their results are dropped.
func (r *Registry) Close() {
	r.cancel()
	for gpu, res := range r.meshes {
		res.Destroy(r.device)
		delete(r.meshes, gpu)
	}
	r.states = make(map[LogicalMeshID]LoadState)
	r.owners = make(map[GPUMeshID]LogicalMeshID)
}
