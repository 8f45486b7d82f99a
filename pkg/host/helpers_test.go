package host

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justyntemme/plughost/pkg/bundle"
	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/engine/offline"
	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/process"
	"github.com/justyntemme/plughost/pkg/midi"
)

var recorderDescriptor = plugin.Descriptor{
	ID:      "test.recorder",
	Name:    "Recorder",
	Version: "0.0.1",
}

// recorder passes audio through and records what the host does to it.
type recorder struct {
	*plugin.Base

	mu            sync.Mutex
	activations   []float64
	deactivations int
	destroys      int

	// audio thread only
	blocks     int
	steady     []int64
	events     []midi.Message
	onProcess  func(p *recorder, ctx *process.Context) (plugin.Status, error)
	mainThread atomic.Int32
	onMain     func()
}

func newRecorder(host plugin.HostShared) *recorder {
	p := &recorder{Base: plugin.NewBase(recorderDescriptor, host, nil)}
	p.OnActivate(func(cfg plugin.AudioConfiguration) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.activations = append(p.activations, cfg.SampleRate)
		return nil
	})
	p.OnDeactivate(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.deactivations++
	})
	return p
}

func (p *recorder) Process(ctx *process.Context) (plugin.Status, error) {
	p.blocks++
	p.steady = append(p.steady, ctx.SteadyTime)
	p.events = append(p.events[:0], ctx.InputEvents.Messages()...)
	if p.onProcess != nil {
		return p.onProcess(p, ctx)
	}
	ctx.PassThrough()
	return plugin.StatusContinue, nil
}

func (p *recorder) OnMainThread() {
	p.mainThread.Add(1)
	if p.onMain != nil {
		p.onMain()
	}
}

func (p *recorder) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroys++
}

func (p *recorder) Activations() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.activations...)
}

// testOptions logs to an observer and records exit codes instead of exiting.
func testOptions() (Options, *observer.ObservedLogs, *atomic.Int32) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := debug.NewWithCore(core)
	exit := &atomic.Int32{}
	exit.Store(-1)
	log.SetExitFunc(func(code int) { exit.Store(int32(code)) })
	return Options{Logger: log}, logs, exit
}

// openRecorder opens a host on a one-plugin bundle holding a recorder.
func openRecorder(t *testing.T, opts Options, configure func(*recorder)) (*Host, *recorder) {
	t.Helper()
	var created *recorder
	factory := plugin.NewRegistry(plugin.Entry{
		Descriptor: recorderDescriptor,
		New: func(h plugin.HostShared) plugin.Plugin {
			created = newRecorder(h)
			if configure != nil {
				configure(created)
			}
			return created
		},
	})
	h, err := OpenBundle(&bundle.Bundle{Path: "test", Factory: factory}, 0, opts)
	require.NoError(t, err)
	return h, created
}

func newOffline(t *testing.T, frames uint32, cfg offline.Config) *offline.Engine {
	t.Helper()
	cfg.Options = engine.Options{ClientName: "test", SampleRate: 48000, BlockSize: frames}
	eng, err := offline.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

// activated opens a recorder host and activates it against an idle offline
// engine so tests can drive the loop by hand.
func activated(t *testing.T, frames uint32, opts Options, configure func(*recorder)) (*Host, *recorder) {
	t.Helper()
	h, p := openRecorder(t, opts, configure)
	require.NoError(t, h.activate(newOffline(t, frames, offline.Config{})))
	return h, p
}

func newBlock(frames uint32, inputs, outputs int, events ...midi.RawEvent) *engine.Block {
	return &engine.Block{
		Frames:    frames,
		FrameTime: engine.NoFrameTime,
		Inputs:    engine.Channels(inputs, frames),
		Outputs:   engine.Channels(outputs, frames),
		Events:    events,
	}
}

func fill(channels [][]float32, v float32) {
	for _, ch := range channels {
		for i := range ch {
			ch[i] = v
		}
	}
}
