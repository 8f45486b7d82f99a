// Package state tracks a plugin instance's activation lifecycle.
package state

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
)

// ActivationState is where a plugin instance is in its lifecycle.
type ActivationState int32

const (
	// Loaded is the state after instantiation and after Deactivate.
	Loaded ActivationState = iota
	// Activated means resources are allocated but Process must not be called.
	Activated
	// Processing means the audio thread may call Process.
	Processing
)

func (s ActivationState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Activated:
		return "activated"
	case Processing:
		return "processing"
	}
	return fmt.Sprintf("ActivationState(%d)", int32(s))
}

// BlockSizeRange is the closed interval of block sizes an activation covers.
type BlockSizeRange struct {
	Min uint32
	Max uint32
}

// FixedRange is the range of exactly one block size.
func FixedRange(frames uint32) BlockSizeRange {
	return BlockSizeRange{Min: frames, Max: frames}
}

// Contains reports whether frames lies within the range.
func (r BlockSizeRange) Contains(frames uint32) bool {
	return frames >= r.Min && frames <= r.Max
}

func (r BlockSizeRange) String() string {
	return fmt.Sprintf("%d..=%d", r.Min, r.Max)
}

// Machine drives a plugin through Loaded, Activated and Processing and
// refuses every transition that is not legal from the current state.
//
// Transitions are made by one goroutine at a time. State and Require may be
// called concurrently with them.
type Machine struct {
	plugin plugin.Plugin
	host   plugin.HostAudioThread

	state      atomic.Int32
	rng        BlockSizeRange
	sampleRate float64
	topology   bus.Topology
}

// NewMachine wraps a plugin that has been created and initialised.
// host is handed to the plugin on every activation.
func NewMachine(p plugin.Plugin, host plugin.HostAudioThread) *Machine {
	return &Machine{plugin: p, host: host}
}

// Plugin returns the managed instance.
func (m *Machine) Plugin() plugin.Plugin { return m.plugin }

// State returns the current state.
func (m *Machine) State() ActivationState {
	return ActivationState(m.state.Load())
}

// Require fails with *InvalidStateError unless the current state is s.
func (m *Machine) Require(s ActivationState) error {
	if got := m.State(); got != s {
		return &InvalidStateError{Op: "require", Want: s, Got: got}
	}
	return nil
}

func (m *Machine) transition(op string, from, to ActivationState) error {
	if !m.state.CompareAndSwap(int32(from), int32(to)) {
		return &InvalidStateError{Op: op, Want: from, Got: m.State()}
	}
	return nil
}

// Activate negotiates sampleRate and r with the plugin and snapshots its
// port topology. Valid only from Loaded.
func (m *Machine) Activate(sampleRate float64, r BlockSizeRange) error {
	if got := m.State(); got != Loaded {
		return &InvalidStateError{Op: "activate", Want: Loaded, Got: got}
	}

	fail := func(reason string, err error) error {
		return &ActivationError{SampleRate: sampleRate, Range: r, Reason: reason, Err: err}
	}
	switch {
	case math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) || sampleRate <= 0:
		return fail("sample rate must be positive", nil)
	case r.Min == 0:
		return fail("minimum block size must be at least 1", nil)
	case r.Min > r.Max:
		return fail("block size range is empty", nil)
	}

	ports := m.plugin.Ports()
	if ports == nil {
		return fail("plugin reports no ports", nil)
	}
	topology := bus.NewTopology(ports.Clone())
	if topology.OutputChannels == 0 {
		return fail("plugin has no active audio outputs", nil)
	}

	cfg := plugin.AudioConfiguration{SampleRate: sampleRate, MinFrames: r.Min, MaxFrames: r.Max}
	if err := m.plugin.Activate(cfg, m.host); err != nil {
		return fail("plugin rejected configuration", err)
	}

	m.rng = r
	m.sampleRate = sampleRate
	m.topology = topology
	m.state.Store(int32(Activated))
	return nil
}

// StartProcessing lets the audio thread call Process. Valid only from Activated.
func (m *Machine) StartProcessing() error {
	if got := m.State(); got != Activated {
		return &InvalidStateError{Op: "start processing", Want: Activated, Got: got}
	}
	if err := m.plugin.StartProcessing(); err != nil {
		return fmt.Errorf("start processing: %w", err)
	}
	return m.transition("start processing", Activated, Processing)
}

// StopProcessing returns to Activated. Valid only from Processing.
func (m *Machine) StopProcessing() error {
	if err := m.transition("stop processing", Processing, Activated); err != nil {
		return err
	}
	m.plugin.StopProcessing()
	return nil
}

// Deactivate releases the activation and returns to Loaded. Valid only from Activated.
func (m *Machine) Deactivate() error {
	if err := m.transition("deactivate", Activated, Loaded); err != nil {
		return err
	}
	m.plugin.Deactivate()
	m.topology = bus.Topology{}
	return nil
}

// Range returns the block size range of the current activation.
func (m *Machine) Range() BlockSizeRange { return m.rng }

// SampleRate returns the sample rate of the current activation.
func (m *Machine) SampleRate() float64 { return m.sampleRate }

// Topology returns the port layout snapshotted at activation.
func (m *Machine) Topology() bus.Topology { return m.topology }
