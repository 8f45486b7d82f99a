// Package engine defines the contract between the host and a real-time
// audio engine: who calls whom, on which thread, with which buffers.
package engine

import (
	"errors"
	"fmt"

	"github.com/justyntemme/plughost/pkg/midi"
)

// Control is a handler's answer to the engine.
type Control int

const (
	// Continue keeps the engine running.
	Continue Control = iota
	// Quit asks the engine to stop calling the handler and shut down.
	Quit
)

func (c Control) String() string {
	if c == Quit {
		return "quit"
	}
	return "continue"
}

// NoFrameTime marks a Block whose engine does not report a frame clock.
const NoFrameTime int64 = -1

// Block is one process callback. Every slice is owned by the engine and is
// only valid until the handler returns.
type Block struct {
	Frames uint32
	// FrameTime is the engine clock at the first frame, or NoFrameTime.
	FrameTime int64
	Inputs    [][]float32
	Outputs   [][]float32
	// Events are ordered as the engine delivered them.
	Events []midi.RawEvent
}

// ProcessHandler is called on the engine's real-time thread. The engine
// never calls BufferSize concurrently with Process.
type ProcessHandler interface {
	Process(b *Block) Control
	BufferSize(frames uint32) Control
}

// NotificationHandler receives engine events outside the process callback.
type NotificationHandler interface {
	// Shutdown reports that the engine stopped on its own.
	Shutdown(reason string)
	SampleRate(rate float64) Control
	XRun() Control
}

// Ports names the engine ports a client registers.
type Ports struct {
	AudioIn  []string
	AudioOut []string
	// MIDIIn is the timed-message input port; empty for none.
	MIDIIn string
}

// Engine is one client connection to an audio engine.
type Engine interface {
	Name() string
	SampleRate() float64
	BufferSize() uint32
	// RegisterPorts must be called before Activate.
	RegisterPorts(p Ports) error
	// Activate starts calling proc. notify may be nil.
	Activate(notify NotificationHandler, proc ProcessHandler) error
	// Deactivate stops the callbacks and waits for a running one to return.
	Deactivate() error
	Close() error
}

// Options are the settings every backend understands.
type Options struct {
	ClientName string
	SampleRate float64
	BlockSize  uint32
}

var (
	ErrNotRegistered = errors.New("engine ports not registered")
	ErrActive        = errors.New("engine already active")
	ErrClosed        = errors.New("engine closed")
)

// Validate checks options before a backend opens a device.
func (o Options) Validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("engine sample rate must be positive, got %g", o.SampleRate)
	}
	if o.BlockSize == 0 {
		return fmt.Errorf("engine block size must be positive")
	}
	return nil
}

// Deinterleave splits frames of interleaved samples into channels.
func Deinterleave(dst [][]float32, src []float32, frames int) {
	n := len(dst)
	for ch := range dst {
		d := dst[ch][:frames]
		for i := range d {
			d[i] = src[i*n+ch]
		}
	}
}

// Interleave merges channels into frames of interleaved samples.
func Interleave(dst []float32, src [][]float32, frames int) {
	n := len(src)
	for ch := range src {
		s := src[ch][:frames]
		for i, v := range s {
			dst[i*n+ch] = v
		}
	}
}

// Channels allocates n channel buffers of frames samples each.
func Channels(n int, frames uint32) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	return out
}
