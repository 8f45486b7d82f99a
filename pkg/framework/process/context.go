// Package process provides the per-block argument a host passes to a plugin.
package process

import (
	"sort"

	"github.com/justyntemme/plughost/pkg/midi"
)

// Transport describes the musical timeline. Hosts without a timeline pass nil.
type Transport struct {
	Playing       bool
	Tempo         float64
	Numerator     int
	Denominator   int
	PositionBeats float64
}

// Context is everything a plugin sees during one Process call. All slices
// are owned by the host and only valid until Process returns.
type Context struct {
	Input  Ports
	Output Ports

	// InputEvents is ordered by frame offset.
	InputEvents  *midi.Batch
	OutputEvents midi.Sink

	// SteadyTime is the running sample position of the first frame of the block.
	SteadyTime int64
	Transport  *Transport
	SampleRate float64

	// Pre-allocated work buffers
	workBuffer []float32
	tempBuffer []float32
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int) *Context {
	return &Context{
		OutputEvents: midi.Void,
		workBuffer:   make([]float32, maxBlockSize),
		tempBuffer:   make([]float32, maxBlockSize),
	}
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if n := c.Input.Frames(); n > 0 {
		return n
	}
	return c.Output.Frames()
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return c.Input.NumChannels()
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return c.Output.NumChannels()
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	return c.workBuffer[:c.NumSamples()]
}

// TempBuffer returns a slice of the pre-allocated temp buffer
// sized to the current block size - no allocation!
func (c *Context) TempBuffer() []float32 {
	return c.tempBuffer[:c.NumSamples()]
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	c.ProcessChannels(func(_ int, input, output []float32) {
		copy(output, input)
	})
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	c.Output.Clear()
}

// HasInputEvents reports whether the block carries any events.
func (c *Context) HasInputEvents() bool {
	return c.InputEvents != nil && c.InputEvents.Len() > 0
}

// InputEventsInRange returns the events with start <= Time < end. The result
// aliases the batch; it does not allocate.
func (c *Context) InputEventsInRange(start, end uint32) []midi.Message {
	if c.InputEvents == nil {
		return nil
	}
	msgs := c.InputEvents.Messages()
	lo := sort.Search(len(msgs), func(i int) bool { return msgs[i].Time >= start })
	hi := sort.Search(len(msgs), func(i int) bool { return msgs[i].Time >= end })
	if lo >= hi {
		return nil
	}
	return msgs[lo:hi]
}
