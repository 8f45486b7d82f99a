package host

import (
	"fmt"
	"sync/atomic"

	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/process"
)

// StagingSet is host-owned sample storage for one block size: one buffer per
// input channel and one per output channel, all exactly Frames long. The port
// views handed to the plugin are built once here so a block never allocates.
type StagingSet struct {
	frames  int
	inputs  [][]float32
	outputs [][]float32
	in      process.Ports
	out     process.Ports
}

// NewStagingSet allocates buffers of frames samples for every channel in topo.
func NewStagingSet(topo bus.Topology, frames uint32) *StagingSet {
	s := &StagingSet{
		frames:  int(frames),
		inputs:  make([][]float32, topo.InputChannels),
		outputs: make([][]float32, topo.OutputChannels),
	}
	for i := range s.inputs {
		s.inputs[i] = make([]float32, frames)
	}
	for i := range s.outputs {
		s.outputs[i] = make([]float32, frames)
	}
	s.in = process.NewPorts(topo.Inputs, s.inputs)
	s.out = process.NewPorts(topo.Outputs, s.outputs)
	return s
}

// Frames is the length of every buffer in the set.
func (s *StagingSet) Frames() int { return s.frames }

// Inputs returns the input channel buffers.
func (s *StagingSet) Inputs() [][]float32 { return s.inputs }

// Outputs returns the output channel buffers.
func (s *StagingSet) Outputs() [][]float32 { return s.outputs }

// BufferBridge copies between the engine's per-callback channel slices and
// the plugin's port buffers.
//
// CopyIn, CopyOut and Outputs run on the audio thread. Swap runs between
// blocks; the engine guarantees it never overlaps a block.
type BufferBridge struct {
	topo bus.Topology
	set  atomic.Pointer[StagingSet]
}

// NewBufferBridge creates a bridge with a staging set of frames samples.
func NewBufferBridge(topo bus.Topology, frames uint32) *BufferBridge {
	b := &BufferBridge{topo: topo}
	b.set.Store(NewStagingSet(topo, frames))
	return b
}

// Topology returns the layout the bridge was built for.
func (b *BufferBridge) Topology() bus.Topology { return b.topo }

// Staging returns the current staging set.
func (b *BufferBridge) Staging() *StagingSet { return b.set.Load() }

// Swap installs set and returns the previous one.
func (b *BufferBridge) Swap(set *StagingSet) *StagingSet {
	return b.set.Swap(set)
}

// Frames returns the current staging length.
func (b *BufferBridge) Frames() int { return b.set.Load().frames }

// Outputs returns the mutable output view of the current staging set.
func (b *BufferBridge) Outputs() process.Ports { return b.set.Load().out }

// CopyIn copies every engine input channel into staging and returns the
// input view for one Process call.
func (b *BufferBridge) CopyIn(engineInputs [][]float32) (process.Ports, error) {
	set := b.set.Load()
	if err := checkChannels("input", engineInputs, len(set.inputs), set.frames); err != nil {
		return process.Ports{}, err
	}
	for i, ch := range engineInputs {
		copy(set.inputs[i], ch)
	}
	return set.in, nil
}

// CopyOut copies every staging output channel into the engine's outputs.
func (b *BufferBridge) CopyOut(engineOutputs [][]float32) error {
	set := b.set.Load()
	if err := checkChannels("output", engineOutputs, len(set.outputs), set.frames); err != nil {
		return err
	}
	for i, ch := range engineOutputs {
		copy(ch, set.outputs[i])
	}
	return nil
}

func checkChannels(dir string, engineChannels [][]float32, want, frames int) error {
	if len(engineChannels) != want {
		return fmt.Errorf("%w: engine has %d %s channels, plugin has %d",
			ErrChannelMismatch, len(engineChannels), dir, want)
	}
	for i, ch := range engineChannels {
		if len(ch) != frames {
			return fmt.Errorf("%w: engine %s channel %d has %d frames, staging has %d",
				ErrChannelMismatch, dir, i, len(ch), frames)
		}
	}
	return nil
}
