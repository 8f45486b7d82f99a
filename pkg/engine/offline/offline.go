// Package offline is a deterministic engine that runs the process callback
// on its own goroutine as fast as the handler allows. It drives headless
// runs and tests: input, events, block-size and sample-rate changes are all
// scripted per block.
package offline

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/midi"
)

// Script decides what happens at each block. Nil fields keep the default:
// a 440 Hz sine on every input, no events, no changes.
type Script struct {
	// Input fills one input channel of block.
	Input func(block uint64, channel int, frameTime int64, buf []float32)
	// Events returns the timed messages delivered with block.
	Events func(block uint64) []midi.RawEvent
	// BlockSize returns a new block size to announce before block, or 0.
	BlockSize func(block uint64) uint32
	// SampleRate returns a new sample rate to announce before block, or 0.
	SampleRate func(block uint64) float64
	// Output observes the outputs after block has been processed.
	Output func(block uint64, outputs [][]float32)
}

// Config configures an offline engine.
type Config struct {
	engine.Options
	// Blocks is the run length; 0 runs until Deactivate.
	Blocks uint64
	// Realtime paces blocks at the wall-clock rate of the sample rate.
	Realtime bool
	Script   Script
}

// Engine implements engine.Engine without audio hardware.
type Engine struct {
	cfg Config

	mu         sync.Mutex
	ports      *engine.Ports
	sampleRate float64
	blockSize  uint32
	stop       chan struct{}
	done       chan struct{}
	closed     bool

	// Carried across activations so a restart continues the clock.
	blocks    atomic.Uint64
	frameTime int64
}

var _ engine.Engine = (*Engine)(nil)

// New creates an offline engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "offline"
	}
	return &Engine{cfg: cfg, sampleRate: cfg.SampleRate, blockSize: cfg.BlockSize}, nil
}

func (e *Engine) Name() string { return e.cfg.ClientName }

func (e *Engine) SampleRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampleRate
}

func (e *Engine) BufferSize() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blockSize
}

func (e *Engine) RegisterPorts(p engine.Ports) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	if e.done != nil {
		return engine.ErrActive
	}
	e.ports = &p
	return nil
}

func (e *Engine) Activate(notify engine.NotificationHandler, proc engine.ProcessHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.closed:
		return engine.ErrClosed
	case e.ports == nil:
		return engine.ErrNotRegistered
	case e.done != nil:
		return engine.ErrActive
	}
	if notify == nil {
		notify = nopNotify{}
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.run(*e.ports, notify, proc, e.stop, e.done)
	return nil
}

// Done is closed when the current activation's goroutine has exited.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return e.done
}

func (e *Engine) Deactivate() error {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.mu.Unlock()
	if done == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

func (e *Engine) Close() error {
	if err := e.Deactivate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

func (e *Engine) run(ports engine.Ports, notify engine.NotificationHandler, proc engine.ProcessHandler, stop, done chan struct{}) {
	defer close(done)

	script := e.cfg.Script
	if script.Input == nil {
		script.Input = Sine(440, 0.5, e.SampleRate())
	}

	frames := e.BufferSize()
	inputs := engine.Channels(len(ports.AudioIn), frames)
	outputs := engine.Channels(len(ports.AudioOut), frames)

	var ticker *time.Ticker
	if e.cfg.Realtime {
		ticker = time.NewTicker(blockDuration(frames, e.SampleRate()))
		defer ticker.Stop()
	}

	for {
		block := e.blocks.Load()
		if e.cfg.Blocks > 0 && block >= e.cfg.Blocks {
			break
		}
		select {
		case <-stop:
			return
		default:
		}

		if script.SampleRate != nil {
			if rate := script.SampleRate(block); rate > 0 && rate != e.SampleRate() {
				e.mu.Lock()
				e.sampleRate = rate
				e.mu.Unlock()
				if notify.SampleRate(rate) == engine.Quit {
					notify.Shutdown("sample rate handler quit")
					return
				}
			}
		}

		if script.BlockSize != nil {
			if size := script.BlockSize(block); size > 0 && size != frames {
				frames = size
				e.mu.Lock()
				e.blockSize = size
				e.mu.Unlock()
				inputs = resize(inputs, frames)
				outputs = resize(outputs, frames)
				if proc.BufferSize(frames) == engine.Quit {
					notify.Shutdown("buffer size handler quit")
					return
				}
				if ticker != nil {
					ticker.Reset(blockDuration(frames, e.SampleRate()))
				}
			}
		}

		for ch, buf := range inputs {
			script.Input(block, ch, e.frameTime, buf)
		}
		b := engine.Block{
			Frames:    frames,
			FrameTime: e.frameTime,
			Inputs:    inputs,
			Outputs:   outputs,
		}
		if script.Events != nil {
			b.Events = script.Events(block)
		}

		ctrl := proc.Process(&b)
		if script.Output != nil {
			script.Output(block, outputs)
		}
		e.frameTime += int64(frames)
		e.blocks.Add(1)
		if ctrl == engine.Quit {
			notify.Shutdown("process handler quit")
			return
		}

		if ticker != nil {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}
	notify.Shutdown(fmt.Sprintf("offline run complete after %d blocks", e.cfg.Blocks))
}

// Blocks returns the number of blocks processed so far.
func (e *Engine) Blocks() uint64 {
	return e.blocks.Load()
}

func resize(chans [][]float32, frames uint32) [][]float32 {
	for i := range chans {
		if uint32(cap(chans[i])) >= frames {
			chans[i] = chans[i][:frames]
		} else {
			chans[i] = make([]float32, frames)
		}
	}
	return chans
}

func blockDuration(frames uint32, sampleRate float64) time.Duration {
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

// Sine returns an Input function producing a continuous sine on every channel.
func Sine(freq, amplitude, sampleRate float64) func(uint64, int, int64, []float32) {
	return func(_ uint64, _ int, frameTime int64, buf []float32) {
		for i := range buf {
			phase := 2 * math.Pi * freq * float64(frameTime+int64(i)) / sampleRate
			buf[i] = float32(amplitude * math.Sin(phase))
		}
	}
}

// Constant returns an Input function that fills every channel with v.
func Constant(v float32) func(uint64, int, int64, []float32) {
	return func(_ uint64, _ int, _ int64, buf []float32) {
		for i := range buf {
			buf[i] = v
		}
	}
}

type nopNotify struct{}

func (nopNotify) Shutdown(string)                   {}
func (nopNotify) SampleRate(float64) engine.Control { return engine.Continue }
func (nopNotify) XRun() engine.Control              { return engine.Continue }
