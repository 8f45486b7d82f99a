// Package portaudio drives the host from the default PortAudio stream using
// non-interleaved f32 buffers. PortAudio has no timed-message input and no
// sample clock in frames, so blocks carry engine.NoFrameTime.
package portaudio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/justyntemme/plughost/pkg/engine"
)

// Engine implements engine.Engine on the default PortAudio devices.
type Engine struct {
	opts  engine.Options
	ports *engine.Ports

	stream *portaudio.Stream
	proc   engine.ProcessHandler
	notify engine.NotificationHandler
	block  engine.Block
	noIn   [][]float32

	mu     sync.Mutex
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

// New initializes PortAudio. Close terminates it.
func New(opts engine.Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &Engine{opts: opts}, nil
}

func (e *Engine) Name() string { return e.opts.ClientName }

func (e *Engine) SampleRate() float64 { return e.opts.SampleRate }

// BufferSize is fixed for the lifetime of the stream.
func (e *Engine) BufferSize() uint32 { return e.opts.BlockSize }

func (e *Engine) RegisterPorts(p engine.Ports) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	if e.stream != nil {
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
	case e.stream != nil:
		return engine.ErrActive
	}
	e.proc, e.notify = proc, notify

	numIn, numOut := len(e.ports.AudioIn), len(e.ports.AudioOut)
	var callback interface{}
	if numIn == 0 {
		callback = func(out [][]float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			e.process(e.noIn, out, flags)
		}
	} else {
		callback = func(in, out [][]float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			e.process(in, out, flags)
		}
	}

	stream, err := portaudio.OpenDefaultStream(numIn, numOut, e.opts.SampleRate, int(e.opts.BlockSize), callback)
	if err != nil {
		return fmt.Errorf("failed to open PortAudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}
	e.stream = stream
	return nil
}

// process runs on the PortAudio callback thread.
func (e *Engine) process(in, out [][]float32, flags portaudio.StreamCallbackFlags) {
	if flags&(portaudio.InputOverflow|portaudio.OutputUnderflow) != 0 && e.notify != nil {
		e.notify.XRun()
	}

	e.block = engine.Block{
		Frames:    uint32(len(firstChannel(in, out))),
		FrameTime: engine.NoFrameTime,
		Inputs:    in,
		Outputs:   out,
	}
	if e.proc.Process(&e.block) == engine.Quit && e.notify != nil {
		go e.notify.Shutdown("process handler quit")
	}
}

func firstChannel(in, out [][]float32) []float32 {
	if len(in) > 0 {
		return in[0]
	}
	if len(out) > 0 {
		return out[0]
	}
	return nil
}

func (e *Engine) Deactivate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stream == nil {
		return nil
	}
	err := e.stream.Stop()
	if cerr := e.stream.Close(); err == nil {
		err = cerr
	}
	e.stream = nil
	if err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

func (e *Engine) Close() error {
	if err := e.Deactivate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return portaudio.Terminate()
}
