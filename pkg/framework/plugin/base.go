package plugin

import (
	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/process"
)

// Base provides default implementations of everything in Plugin except
// Process. Plugins embed it and override what they need.
type Base struct {
	Desc Descriptor

	buses  *bus.Configuration
	shared HostShared
	main   HostMainThread
	audio  HostAudioThread
	config AudioConfiguration
	active bool

	// Optional callbacks for customization
	onActivate   func(cfg AudioConfiguration) error
	onDeactivate func()
	onReset      func()
}

// NewBase creates a plugin base with the given bus layout. A nil layout
// defaults to stereo in, stereo out and one event input.
func NewBase(desc Descriptor, host HostShared, buses *bus.Configuration) *Base {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	return &Base{Desc: desc, buses: buses, shared: host}
}

// Init implements Plugin.
func (b *Base) Init(host HostMainThread) error {
	b.main = host
	return nil
}

// Ports implements Plugin.
func (b *Base) Ports() *bus.Configuration {
	return b.buses
}

// SetPorts replaces the bus layout and tells the host. The new layout takes
// effect after the host restarts the plugin.
func (b *Base) SetPorts(buses *bus.Configuration) {
	b.buses = buses
	if b.main != nil {
		b.main.PortsChanged()
	}
}

// Activate implements Plugin.
func (b *Base) Activate(cfg AudioConfiguration, host HostAudioThread) error {
	b.config = cfg
	b.audio = host
	if b.onActivate != nil {
		if err := b.onActivate(cfg); err != nil {
			return err
		}
	}
	b.active = true
	return nil
}

// Deactivate implements Plugin.
func (b *Base) Deactivate() {
	b.active = false
	if b.onDeactivate != nil {
		b.onDeactivate()
	}
}

// StartProcessing implements Plugin.
func (b *Base) StartProcessing() error { return nil }

// StopProcessing implements Plugin and resets processing state.
func (b *Base) StopProcessing() {
	if b.onReset != nil {
		b.onReset()
	}
}

// OnMainThread implements Plugin.
func (b *Base) OnMainThread() {}

// Destroy implements Plugin.
func (b *Base) Destroy() {}

// Active reports whether the plugin is between Activate and Deactivate.
func (b *Base) Active() bool { return b.active }

// SampleRate returns the current sample rate
func (b *Base) SampleRate() float64 { return b.config.SampleRate }

// Config returns the configuration of the current activation.
func (b *Base) Config() AudioConfiguration { return b.config }

// Host returns the thread-safe host handle given at creation.
func (b *Base) Host() HostShared { return b.shared }

// AudioHost returns the handle given to Activate.
func (b *Base) AudioHost() HostAudioThread { return b.audio }

// OnActivate sets a callback run during Activate. An error rejects the configuration.
func (b *Base) OnActivate(fn func(cfg AudioConfiguration) error) {
	b.onActivate = fn
}

// OnDeactivate sets a callback run during Deactivate.
func (b *Base) OnDeactivate(fn func()) {
	b.onDeactivate = fn
}

// OnReset sets a callback for when the plugin should reset its state
func (b *Base) OnReset(fn func()) {
	b.onReset = fn
}

// SimplePlugin is a Base with just a process function.
type SimplePlugin struct {
	*Base
	processFunc func(ctx *process.Context) Status
}

// NewSimple creates a plugin from a process function.
func NewSimple(desc Descriptor, host HostShared, buses *bus.Configuration, processFunc func(ctx *process.Context) Status) *SimplePlugin {
	return &SimplePlugin{
		Base:        NewBase(desc, host, buses),
		processFunc: processFunc,
	}
}

// Process implements Plugin.
func (s *SimplePlugin) Process(ctx *process.Context) (Status, error) {
	if s.processFunc == nil {
		ctx.PassThrough()
		return StatusContinue, nil
	}
	return s.processFunc(ctx), nil
}
