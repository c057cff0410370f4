package assets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshstage/internal/engine/mesh"
	"github.com/Faultbox/meshstage/pkg/formats"
)

type fakeDevice struct {
	mu      sync.Mutex
	next    uint32
	live    map[uint32]bool
	deletes int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{live: make(map[uint32]bool)}
}

func (d *fakeDevice) CreateBuffer(data []float32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.live[d.next] = true
	return d.next
}

func (d *fakeDevice) DeleteBuffer(buf uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.live[buf] {
		panic("delete of unknown buffer")
	}
	delete(d.live, buf)
	d.deletes++
}

func (d *fakeDevice) liveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// gateFetcher blocks each fetch of a source until the test releases it.
type gateFetcher struct {
	mu    sync.Mutex
	gates map[string]chan fetchResult
}

func newGateFetcher() *gateFetcher {
	return &gateFetcher{gates: make(map[string]chan fetchResult)}
}

func (g *gateFetcher) gate(source string) chan fetchResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[source]
	if !ok {
		ch = make(chan fetchResult, 8)
		g.gates[source] = ch
	}
	return ch
}

func (g *gateFetcher) succeed(source string) {
	g.gate(source) <- fetchResult{desc: mesh.Default()}
}

func (g *gateFetcher) fail(source string) {
	g.gate(source) <- fetchResult{err: errors.New("404 not found")}
}

func (g *gateFetcher) Fetch(ctx context.Context, source string) (*formats.MeshDescription, error) {
	select {
	case res := <-g.gate(source):
		return res.desc, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drainUntil runs frames until id reaches a state accepted by done.
func drainUntil(t *testing.T, r *Registry, id LogicalMeshID, done func(LoadState) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.DrainCompletedLoads()
		if done(r.State(id)) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("mesh %d stuck in state %v", id, r.State(id))
}

func isLoaded(s LoadState) bool { _, ok := s.(Loaded); return ok }
func isFailed(s LoadState) bool { _, ok := s.(Failed); return ok }

func ref(id LogicalMeshID) *LogicalMeshID { return &id }

func TestLoadThenReclaimScenario(t *testing.T) {
	dev := newFakeDevice()
	fetch := newGateFetcher()
	r := NewRegistry(dev, fetch)
	defer r.Close()

	a := r.Request("a.json")
	require.Equal(t, LogicalMeshID(0), a)

	// Frame with the fetch unresolved.
	assert.Equal(t, 0, r.DrainCompletedLoads())
	assert.IsType(t, Loading{}, r.State(a))
	assert.Equal(t, DefaultMesh, r.Resolve(ref(a)))

	fetch.succeed("a.json")
	drainUntil(t, r, a, isLoaded)

	gpu := r.State(a).(Loaded).GPU
	assert.NotEqual(t, DefaultMesh, gpu)
	res, ok := r.Mesh(gpu)
	require.True(t, ok)
	assert.Equal(t, int32(36), res.VertexCount)
	assert.Equal(t, gpu, r.Resolve(ref(a)))

	// Still referenced: kept.
	assert.Equal(t, 0, r.ReclaimUnreferenced([]LogicalMeshID{a}))
	_, ok = r.Mesh(gpu)
	assert.True(t, ok)

	// Reference dropped: destroyed on the next reclaim.
	assert.Equal(t, 1, r.ReclaimUnreferenced(nil))
	_, ok = r.Mesh(gpu)
	assert.False(t, ok)
	assert.True(t, res.Destroyed())
	assert.Equal(t, 0, dev.liveBuffers())
	assert.Equal(t, DefaultMesh, r.Resolve(ref(a)))
	assert.Equal(t, Evicted{Source: "a.json"}, r.State(a))
}

func TestFailedFetchAndRetryGetsNewID(t *testing.T) {
	fetch := newGateFetcher()
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	b := r.Request("b.json")
	fetch.fail("b.json")
	drainUntil(t, r, b, isFailed)

	failed := r.State(b).(Failed)
	assert.Equal(t, "b.json", failed.Source)
	assert.Error(t, failed.Err)
	assert.Equal(t, DefaultMesh, r.Resolve(ref(b)))

	// Failed is terminal: more frames never revive it.
	for i := 0; i < 3; i++ {
		r.DrainCompletedLoads()
		r.ReclaimUnreferenced([]LogicalMeshID{b})
	}
	assert.IsType(t, Failed{}, r.State(b))

	retry := r.Request("b.json")
	assert.Greater(t, retry, b)
	assert.IsType(t, Loading{}, r.State(retry))
	assert.IsType(t, Failed{}, r.State(b))
}

func TestIDsUniqueAndIncreasing(t *testing.T) {
	fetch := newGateFetcher()
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	var last LogicalMeshID
	for i := 0; i < 50; i++ {
		id := r.Request("m.json")
		if i > 0 {
			require.Greater(t, id, last)
		}
		last = id
		fetch.fail("m.json")
	}

	// Evicting or failing never frees an id for reuse.
	drainUntil(t, r, last, isFailed)
	next := r.Request("m.json")
	assert.Equal(t, last+1, next)
}

func TestReclaimKeepsEveryReferencedMesh(t *testing.T) {
	dev := newFakeDevice()
	fetch := newGateFetcher()
	r := NewRegistry(dev, fetch)
	defer r.Close()

	ids := []LogicalMeshID{r.Request("x.json"), r.Request("y.json"), r.Request("z.json")}
	fetch.succeed("x.json")
	fetch.succeed("y.json")
	fetch.succeed("z.json")
	for _, id := range ids {
		drainUntil(t, r, id, isLoaded)
	}
	require.Equal(t, 3, r.Stats().LiveMeshes)

	// Two objects share y, one references x, nobody references z.
	refs := []LogicalMeshID{ids[1], ids[0], ids[1]}
	assert.Equal(t, 1, r.ReclaimUnreferenced(refs))

	for _, id := range ids[:2] {
		gpu := r.Resolve(ref(id))
		require.NotEqual(t, DefaultMesh, gpu)
		res, ok := r.Mesh(gpu)
		require.True(t, ok)
		assert.False(t, res.Destroyed())
	}
	assert.Equal(t, DefaultMesh, r.Resolve(ref(ids[2])))
	assert.Equal(t, Evicted{Source: "z.json"}, r.State(ids[2]))
	assert.Equal(t, 6, dev.liveBuffers())
}

func TestReplacedRequestStillCompletesThenEvicts(t *testing.T) {
	fetch := newGateFetcher()
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	old := r.Request("old.json")
	current := r.Request("new.json")

	// The object now points at current; the old fetch resolves anyway.
	fetch.succeed("old.json")
	drainUntil(t, r, old, isLoaded)

	assert.Equal(t, 1, r.ReclaimUnreferenced([]LogicalMeshID{current}))
	assert.Equal(t, DefaultMesh, r.Resolve(ref(old)))
	assert.IsType(t, Evicted{}, r.State(old))
	assert.IsType(t, Loading{}, r.State(current))
}

func TestRequestedIDNeverReportsReady(t *testing.T) {
	fetch := newGateFetcher()
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	id := r.Request("a.json")
	fetch.succeed("a.json")
	drainUntil(t, r, id, isLoaded)

	// Evicted stays evicted across later frames, and reclaiming again
	// destroys nothing more.
	require.Equal(t, 1, r.ReclaimUnreferenced(nil))
	for i := 0; i < 3; i++ {
		r.DrainCompletedLoads()
		assert.Equal(t, 0, r.ReclaimUnreferenced([]LogicalMeshID{id}))
		assert.NotEqual(t, Ready{}, r.State(id))
		assert.Equal(t, DefaultMesh, r.Resolve(ref(id)))
	}

	// Reloading the same source takes a new id; the old one stays evicted.
	again := r.Request("a.json")
	fetch.succeed("a.json")
	drainUntil(t, r, again, isLoaded)
	assert.Greater(t, again, id)
	assert.IsType(t, Evicted{}, r.State(id))
}

// forgetfulFetcher records the sources the registry asks it to forget.
type forgetfulFetcher struct {
	*gateFetcher
	forgotten []string
}

func (f *forgetfulFetcher) Forget(source string) {
	f.forgotten = append(f.forgotten, source)
}

func TestReclaimForgetsFetcherState(t *testing.T) {
	fetch := &forgetfulFetcher{gateFetcher: newGateFetcher()}
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	keep := r.Request("keep.json")
	drop := r.Request("drop.json")
	fetch.succeed("keep.json")
	fetch.succeed("drop.json")
	drainUntil(t, r, keep, isLoaded)
	drainUntil(t, r, drop, isLoaded)

	r.ReclaimUnreferenced([]LogicalMeshID{keep})
	assert.Equal(t, []string{"drop.json"}, fetch.forgotten)
}

func TestResolveNilAndUnknown(t *testing.T) {
	r := NewRegistry(newFakeDevice(), newGateFetcher())
	defer r.Close()

	assert.Equal(t, DefaultMesh, r.Resolve(nil))
	assert.Equal(t, DefaultMesh, r.Resolve(ref(999)))
	assert.IsType(t, Ready{}, r.State(999))
}

func TestInvalidPayloadFails(t *testing.T) {
	fetch := FetcherFunc(func(ctx context.Context, source string) (*formats.MeshDescription, error) {
		return &formats.MeshDescription{VertexPositions: []float32{1, 2, 3}}, nil
	})
	dev := newFakeDevice()
	r := NewRegistry(dev, fetch)
	defer r.Close()

	id := r.Request("broken.json")
	drainUntil(t, r, id, isFailed)
	assert.Equal(t, 0, dev.liveBuffers())
}

func TestNilPayloadFails(t *testing.T) {
	fetch := FetcherFunc(func(ctx context.Context, source string) (*formats.MeshDescription, error) {
		return nil, nil
	})
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	id := r.Request("empty.json")
	drainUntil(t, r, id, isFailed)
}

func TestFetcherPanicBecomesFailure(t *testing.T) {
	fetch := FetcherFunc(func(ctx context.Context, source string) (*formats.MeshDescription, error) {
		panic("boom")
	})
	r := NewRegistry(newFakeDevice(), fetch)
	defer r.Close()

	id := r.Request("panic.json")
	drainUntil(t, r, id, isFailed)
	assert.Contains(t, r.State(id).(Failed).Err.Error(), "boom")
}

func TestStatsAndClose(t *testing.T) {
	dev := newFakeDevice()
	fetch := newGateFetcher()
	r := NewRegistry(dev, fetch)

	ok := r.Request("ok.json")
	bad := r.Request("bad.json")
	r.Request("pending.json")
	fetch.succeed("ok.json")
	fetch.fail("bad.json")
	drainUntil(t, r, ok, isLoaded)
	drainUntil(t, r, bad, isFailed)

	assert.Equal(t, Stats{Loading: 1, Failed: 1, Loaded: 1, LiveMeshes: 1}, r.Stats())

	r.ReclaimUnreferenced(nil)
	assert.Equal(t, Stats{Loading: 1, Failed: 1, Evicted: 1}, r.Stats())

	r.Close()
	assert.Equal(t, 0, dev.liveBuffers())
	assert.Equal(t, Stats{}, r.Stats())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "ready", Ready{}.String())
	assert.Equal(t, "loading a.json", Loading{Source: "a.json"}.String())
	assert.Contains(t, Failed{Source: "b.json", Err: errors.New("nope")}.String(), "nope")
	assert.Contains(t, Loaded{Source: "c.json", GPU: 3}.String(), "gpu mesh 3")
	assert.Equal(t, "evicted d.json", Evicted{Source: "d.json"}.String())
}
