package host

import (
	"math/bits"
	"sync"

	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/state"
)

// Reconfigurator resizes the bridge's staging buffers when the engine
// announces a new block size. It never runs during a block.
type Reconfigurator struct {
	bridge  *BufferBridge
	rng     state.BlockSizeRange
	log     *debug.Logger
	metrics *Metrics

	mu sync.Mutex
	// spare sets by frame count; the set in use is never in the pool
	pool map[uint32]*StagingSet
}

// NewReconfigurator creates a reconfigurator bound to the range negotiated at activation.
func NewReconfigurator(bridge *BufferBridge, rng state.BlockSizeRange, log *debug.Logger, metrics *Metrics) *Reconfigurator {
	if log == nil {
		log = debug.Default()
	}
	return &Reconfigurator{
		bridge:  bridge,
		rng:     rng,
		log:     log.Named("Reconfigurator"),
		metrics: metrics,
		pool:    make(map[uint32]*StagingSet),
	}
}

// PreallocatedSizes lists the block sizes Preallocate prepares for rng: the
// bounds and every power of two between them.
func PreallocatedSizes(rng state.BlockSizeRange) []uint32 {
	sizes := []uint32{rng.Min}
	if rng.Min == 0 {
		return sizes
	}
	p := uint32(1) << bits.Len32(rng.Min)
	if rng.Min&(rng.Min-1) == 0 {
		p = rng.Min << 1
	}
	for ; p != 0 && p < rng.Max; p <<= 1 {
		sizes = append(sizes, p)
	}
	if rng.Max != rng.Min {
		sizes = append(sizes, rng.Max)
	}
	return sizes
}

// Preallocate builds staging sets for the sizes the engine is likely to
// announce so that a later change does not allocate. Call it from the
// control thread after activation.
func (r *Reconfigurator) Preallocate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := uint32(r.bridge.Frames())
	topo := r.bridge.Topology()
	for _, size := range PreallocatedSizes(r.rng) {
		if size == current || r.pool[size] != nil {
			continue
		}
		r.pool[size] = NewStagingSet(topo, size)
	}
	r.log.Debug("preallocated staging for %d block sizes in %s", len(r.pool), r.rng)
}

// OnBlockSizeChanged swaps in staging buffers of newSize. A size outside the
// negotiated range fails with *ReconfigureError.
func (r *Reconfigurator) OnBlockSizeChanged(newSize uint32) error {
	if !r.rng.Contains(newSize) {
		return &ReconfigureError{Frames: newSize, Range: r.rng}
	}
	if uint32(r.bridge.Frames()) == newSize {
		return nil
	}

	r.mu.Lock()
	set := r.pool[newSize]
	delete(r.pool, newSize)
	r.mu.Unlock()

	if set == nil {
		set = NewStagingSet(r.bridge.Topology(), newSize)
	}
	old := r.bridge.Swap(set)

	r.mu.Lock()
	r.pool[uint32(old.Frames())] = old
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Reconfigurations.Inc()
	}
	r.log.Info("block size changed from %d to %d frames", old.Frames(), newSize)
	return nil
}
