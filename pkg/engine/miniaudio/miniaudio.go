// Package miniaudio drives the host from a miniaudio duplex device through malgo.
// The device delivers interleaved f32 frames; they are split into the
// engine's per-channel buffers before the process callback. There is no
// timed-message input.
package miniaudio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/justyntemme/plughost/pkg/engine"
)

// Engine implements engine.Engine on the default capture and playback devices.
type Engine struct {
	opts engine.Options

	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	ports        *engine.Ports

	// Callback state, touched only by the device thread while started.
	proc      engine.ProcessHandler
	notify    engine.NotificationHandler
	frames    uint32
	inputs    [][]float32
	outputs   [][]float32
	scratch   []float32
	frameTime int64
	reported  atomic.Uint32

	mu sync.Mutex
}

var _ engine.Engine = (*Engine)(nil)

// New opens a malgo context. Devices are created by Activate.
func New(opts engine.Options, logf func(format string, args ...interface{})) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if logf != nil {
			logf("malgo: %s", message)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}
	e := &Engine{opts: opts, audioContext: audioCtx, frames: opts.BlockSize}
	e.reported.Store(opts.BlockSize)
	return e, nil
}

func (e *Engine) Name() string { return e.opts.ClientName }

func (e *Engine) SampleRate() float64 { return e.opts.SampleRate }

func (e *Engine) BufferSize() uint32 {
	return e.reported.Load()
}

func (e *Engine) RegisterPorts(p engine.Ports) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.audioContext == nil {
		return engine.ErrClosed
	}
	if e.device != nil {
		return engine.ErrActive
	}
	if len(p.AudioOut) == 0 {
		return fmt.Errorf("miniaudio: at least one output channel is required")
	}
	e.ports = &p
	return nil
}

func (e *Engine) Activate(notify engine.NotificationHandler, proc engine.ProcessHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.audioContext == nil:
		return engine.ErrClosed
	case e.ports == nil:
		return engine.ErrNotRegistered
	case e.device != nil:
		return engine.ErrActive
	}

	numIn, numOut := len(e.ports.AudioIn), len(e.ports.AudioOut)
	deviceType := malgo.Duplex
	if numIn == 0 {
		deviceType = malgo.Playback
	}

	config := malgo.DefaultDeviceConfig(deviceType)
	config.SampleRate = uint32(e.opts.SampleRate)
	config.PeriodSizeInFrames = e.opts.BlockSize
	config.Periods = 2
	config.PerformanceProfile = malgo.LowLatency
	config.Alsa.NoMMap = 1
	config.Playback.Format = malgo.FormatF32
	config.Playback.Channels = uint32(numOut)
	if numIn > 0 {
		config.Capture.Format = malgo.FormatF32
		config.Capture.Channels = uint32(numIn)
	}

	e.proc, e.notify = proc, notify
	e.frames = e.opts.BlockSize
	e.reported.Store(e.frames)
	e.inputs = engine.Channels(numIn, e.frames)
	e.outputs = engine.Channels(numOut, e.frames)
	e.scratch = make([]float32, int(e.frames)*max(numIn, numOut))

	device, err := malgo.InitDevice(e.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: e.onData,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize duplex device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}
	e.device = device
	return nil
}

// onData runs on the device thread.
func (e *Engine) onData(pOutput, pInput []byte, frameCount uint32) {
	if frameCount == 0 {
		return
	}
	if frameCount != e.frames {
		// The device changed its period; treat it as a block-size notification.
		e.frames = frameCount
		e.reported.Store(frameCount)
		e.inputs = growChannels(e.inputs, frameCount)
		e.outputs = growChannels(e.outputs, frameCount)
		if need := int(frameCount) * max(len(e.inputs), len(e.outputs)); need > len(e.scratch) {
			e.scratch = make([]float32, need)
		}
		if e.proc.BufferSize(frameCount) == engine.Quit {
			e.fail("buffer size handler quit")
			return
		}
	}

	n := int(frameCount)
	if len(e.inputs) > 0 {
		samples := n * len(e.inputs)
		decodeF32(e.scratch[:samples], pInput)
		engine.Deinterleave(e.inputs, e.scratch[:samples], n)
	}

	b := engine.Block{
		Frames:    frameCount,
		FrameTime: e.frameTime,
		Inputs:    e.inputs,
		Outputs:   e.outputs,
	}
	ctrl := e.proc.Process(&b)
	e.frameTime += int64(frameCount)

	samples := n * len(e.outputs)
	engine.Interleave(e.scratch[:samples], e.outputs, n)
	encodeF32(pOutput, e.scratch[:samples])

	if ctrl == engine.Quit {
		e.fail("process handler quit")
	}
}

func (e *Engine) fail(reason string) {
	if e.notify != nil {
		// Stopping from the device thread would deadlock; the controller tears down.
		go e.notify.Shutdown(reason)
	}
}

func (e *Engine) Deactivate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device == nil {
		return nil
	}
	if e.device.IsStarted() {
		if err := e.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop device: %w", err)
		}
	}
	e.device.Uninit()
	e.device = nil
	return nil
}

func (e *Engine) Close() error {
	if err := e.Deactivate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.audioContext != nil {
		_ = e.audioContext.Uninit()
		e.audioContext.Free()
		e.audioContext = nil
	}
	return nil
}

func growChannels(chans [][]float32, frames uint32) [][]float32 {
	for i := range chans {
		if uint32(cap(chans[i])) < frames {
			chans[i] = make([]float32, frames)
		}
		chans[i] = chans[i][:frames]
	}
	return chans
}

// decodeF32 reads little-endian f32 samples. src may be shorter than dst
// when the device delivers a partial buffer; the rest is zeroed.
func decodeF32(dst []float32, src []byte) {
	for i := range dst {
		off := i * 4
		if off+4 > len(src) {
			clear(dst[i:])
			return
		}
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
	}
}

func encodeF32(dst []byte, src []float32) {
	for i, v := range src {
		off := i * 4
		if off+4 > len(dst) {
			return
		}
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
	}
}
