// Package host bridges a real-time audio engine and a plugin instance.
//
// Open performs the one-time handshake that turns a bundle path into an
// initialised plugin. A Controller then activates it against an engine,
// runs the ProcessLoop on the engine's audio thread and relays the plugin's
// requests until shutdown.
package host

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/justyntemme/plughost/pkg/bundle"
	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/state"
	"github.com/justyntemme/plughost/pkg/midi"
)

// Version is reported to plugins in HostInfo.
const Version = "0.1.0"

// MIDIPort is the name of the engine's timed-message input.
const MIDIPort = "midi_in"

// DefaultInfo identifies plughost to plugins.
func DefaultInfo() plugin.HostInfo {
	return plugin.HostInfo{
		Name:    "plughost",
		Vendor:  "plughost",
		URL:     "https://github.com/justyntemme/plughost",
		Version: Version,
	}
}

// Options configure a host session.
type Options struct {
	// Info is handed to the plugin. Zero means DefaultInfo.
	Info plugin.HostInfo
	// Range is the block size range to activate for. Zero means exactly the
	// engine's block size at activation.
	Range state.BlockSizeRange
	// EventCapacity bounds the timed messages per block. Zero means midi.DefaultCapacity.
	EventCapacity int
	// WarnRate limits translation warnings per second. Zero means no limit.
	WarnRate float64
	Logger   *debug.Logger
	// Registry receives the session metrics. Nil means a private registry.
	Registry *prometheus.Registry
}

// Host owns one plugin instance and everything the audio thread touches.
type Host struct {
	id      uuid.UUID
	opts    Options
	log     *debug.Logger
	metrics *Metrics

	bundlePath string
	desc       plugin.Descriptor
	plugin     plugin.Plugin
	shared     *sharedHost
	main       *mainHost
	audio      *audioHost
	machine    *state.Machine
	translator *midi.Translator
	reporter   *limitedReporter

	// valid while activated
	bridge     *BufferBridge
	reconf     *Reconfigurator
	loop       *ProcessLoop
	nextSteady int64

	shutdown  chan string
	fatalOnce sync.Once
	fatalErr  atomic.Pointer[error]
}

// Open loads the bundle at path and instantiates its index-th plugin.
func Open(path string, index int, opts Options) (*Host, error) {
	b, err := bundle.Open(path)
	if err != nil {
		return nil, err
	}
	return OpenBundle(b, index, opts)
}

// OpenBundle instantiates and initialises the index-th plugin of b.
func OpenBundle(b *bundle.Bundle, index int, opts Options) (*Host, error) {
	desc, err := b.Select(index)
	if err != nil {
		return nil, err
	}

	h := newHost(opts)
	p, err := b.Factory.Create(h.shared, desc.ID)
	if err != nil {
		return nil, fmt.Errorf("create plugin %s: %w", desc.ID, err)
	}
	if err := p.Init(h.main); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("init plugin %s: %w", desc.ID, err)
	}

	h.bundlePath = b.Path
	h.desc = desc
	h.plugin = p
	h.machine = state.NewMachine(p, h.audio)
	h.log.Info("loaded %s (%s %s, uid %s) from %s", desc.Name, desc.ID, desc.Version, desc.UID(), b.Path)
	return h, nil
}

func newHost(opts Options) *Host {
	if opts.Info == (plugin.HostInfo{}) {
		opts.Info = DefaultInfo()
	}
	if opts.Logger == nil {
		opts.Logger = debug.Default()
	}
	id := uuid.New()
	log := opts.Logger.Named("host").With("session", id.String())
	metrics := NewMetrics(opts.Registry)

	shared := newSharedHost(opts.Info, metrics)
	reporter := newLimitedReporter(log.Named("audio"), opts.WarnRate)
	translator := midi.NewTranslator(opts.EventCapacity, reporter)
	metrics.WatchTranslator(translator)

	return &Host{
		id:         id,
		opts:       opts,
		log:        log,
		metrics:    metrics,
		shared:     shared,
		main:       &mainHost{sharedHost: shared},
		audio:      &audioHost{sharedHost: shared},
		translator: translator,
		reporter:   reporter,
		shutdown:   make(chan string, 1),
	}
}

// ID identifies the session in logs.
func (h *Host) ID() uuid.UUID { return h.id }

// Descriptor returns the descriptor the plugin was created from.
func (h *Host) Descriptor() plugin.Descriptor { return h.desc }

// Plugin returns the instance.
func (h *Host) Plugin() plugin.Plugin { return h.plugin }

// Machine returns the instance's activation state machine.
func (h *Host) Machine() *state.Machine { return h.machine }

// Metrics returns the session metrics.
func (h *Host) Metrics() *Metrics { return h.metrics }

// Translator returns the timed-message translator.
func (h *Host) Translator() *midi.Translator { return h.translator }

// Loop returns the process loop of the current activation, or nil.
func (h *Host) Loop() *ProcessLoop { return h.loop }

// Bridge returns the buffer bridge of the current activation, or nil.
func (h *Host) Bridge() *BufferBridge { return h.bridge }

// Fatal reports an unrecoverable error: it asks the controller to shut down
// and logs at FATAL, which exits the process. Only the first call counts.
func (h *Host) Fatal(err error) {
	first := false
	h.fatalOnce.Do(func() {
		h.fatalErr.Store(&err)
		first = true
	})
	if !first {
		return
	}
	h.requestShutdown("fatal error")
	h.log.Fatal("%v", err)
}

// Err returns the error passed to Fatal, if any.
func (h *Host) Err() error {
	if p := h.fatalErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (h *Host) requestShutdown(reason string) {
	select {
	case h.shutdown <- reason:
	default:
	}
}

// activate negotiates the engine's configuration with the plugin, builds the
// staging buffers, registers the engine ports and starts processing. The
// engine must be inactive.
func (h *Host) activate(eng engine.Engine) error {
	frames, rate := eng.BufferSize(), eng.SampleRate()
	rng := h.opts.Range
	if rng == (state.BlockSizeRange{}) {
		rng = state.FixedRange(frames)
	}
	if !rng.Contains(frames) {
		return &ReconfigureError{Frames: frames, Range: rng}
	}
	if err := h.machine.Activate(rate, rng); err != nil {
		return err
	}

	topo := h.machine.Topology()
	h.bridge = NewBufferBridge(topo, frames)
	h.reconf = NewReconfigurator(h.bridge, rng, h.log, h.metrics)
	h.reconf.Preallocate()
	h.loop = newProcessLoop(h, h.bridge, h.reconf)

	ports := engine.Ports{
		AudioIn:  topo.InputNames(),
		AudioOut: topo.OutputNames(),
		MIDIIn:   MIDIPort,
	}
	if err := eng.RegisterPorts(ports); err != nil {
		h.deactivate()
		return fmt.Errorf("register ports with %s: %w", eng.Name(), err)
	}
	if err := h.machine.StartProcessing(); err != nil {
		h.deactivate()
		return err
	}
	h.log.Info("activated at %g Hz, blocks %s, %s", rate, rng, topo)
	return nil
}

// deactivate walks the machine back to Loaded from wherever it is.
func (h *Host) deactivate() error {
	if h.loop != nil {
		h.nextSteady = h.loop.NextSteadyTime()
	}
	if h.machine.State() == state.Processing {
		if err := h.machine.StopProcessing(); err != nil {
			return err
		}
	}
	if h.machine.State() == state.Activated {
		if err := h.machine.Deactivate(); err != nil {
			return err
		}
	}
	h.bridge, h.reconf, h.loop = nil, nil, nil
	return nil
}

// Close deactivates and destroys the plugin. The host cannot be used afterwards.
func (h *Host) Close() error {
	if h.plugin == nil {
		return nil
	}
	err := h.deactivate()
	h.plugin.Destroy()
	h.plugin = nil
	h.log.Debug("plugin destroyed")
	return err
}
