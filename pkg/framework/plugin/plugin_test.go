package plugin

import (
	"errors"
	"testing"

	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	restarts, processes, callbacks, portsChanged int
}

func (h *fakeHost) Info() HostInfo    { return HostInfo{Name: "test"} }
func (h *fakeHost) RequestRestart()   { h.restarts++ }
func (h *fakeHost) RequestProcess()   { h.processes++ }
func (h *fakeHost) RequestCallback()  { h.callbacks++ }
func (h *fakeHost) PortsChanged()     { h.portsChanged++ }
func (h *fakeHost) SteadyTime() int64 { return 0 }
func (h *fakeHost) BlockSize() uint32 { return 128 }

var (
	_ HostMainThread  = (*fakeHost)(nil)
	_ HostAudioThread = (*fakeHost)(nil)
	_ Plugin          = (*SimplePlugin)(nil)
	_ Factory         = (*Registry)(nil)
)

func TestBaseLifecycle(t *testing.T) {
	host := &fakeHost{}
	base := NewBase(Descriptor{ID: "x", Name: "X"}, host, nil)

	assert.True(t, base.Ports().HasEventInput(), "nil layout defaults to stereo with events")
	require.NoError(t, base.Init(host))

	cfg := AudioConfiguration{SampleRate: 48000, MinFrames: 128, MaxFrames: 128}
	require.NoError(t, base.Activate(cfg, host))
	assert.True(t, base.Active())
	assert.Equal(t, 48000.0, base.SampleRate())
	assert.Equal(t, cfg, base.Config())
	assert.Same(t, host, base.AudioHost())

	resets := 0
	base.OnReset(func() { resets++ })
	base.StopProcessing()
	assert.Equal(t, 1, resets)

	base.Deactivate()
	assert.False(t, base.Active())
}

func TestBaseActivateRejects(t *testing.T) {
	base := NewBase(Descriptor{ID: "x", Name: "X"}, nil, nil)
	errTooSmall := errors.New("block too small")
	base.OnActivate(func(cfg AudioConfiguration) error {
		if cfg.MinFrames < 64 {
			return errTooSmall
		}
		return nil
	})

	err := base.Activate(AudioConfiguration{SampleRate: 44100, MinFrames: 16, MaxFrames: 16}, nil)
	assert.ErrorIs(t, err, errTooSmall)
	assert.False(t, base.Active())
}

func monoLayout() *bus.Configuration {
	return bus.NewBuilder().WithMonoInput("Mono In").WithMonoOutput("Mono Out").MustBuild()
}

func TestBaseSetPortsNotifiesHost(t *testing.T) {
	host := &fakeHost{}
	base := NewBase(Descriptor{ID: "x", Name: "X"}, host, bus.NewEffectStereo())
	require.NoError(t, base.Init(host))

	base.SetPorts(monoLayout())
	assert.Equal(t, 1, host.portsChanged)
	assert.Equal(t, 1, base.Ports().GetActiveOutputChannelCount())
}

func TestSimplePluginDefaultsToPassThrough(t *testing.T) {
	p := NewSimple(Descriptor{ID: "x", Name: "X"}, nil, monoLayout(), nil)
	topo := bus.NewTopology(p.Ports())

	ctx := process.NewContext(4)
	ctx.Input = process.NewPorts(topo.Inputs, [][]float32{{1, 2, 3, 4}})
	ctx.Output = process.NewPorts(topo.Outputs, [][]float32{make([]float32, 4)})

	status, err := p.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusContinue, status)
	assert.Equal(t, []float32{1, 2, 3, 4}, ctx.Output.Channels[0])
}

func TestRegistry(t *testing.T) {
	gain := Descriptor{ID: "test.gain", Name: "Gain"}
	tone := Descriptor{ID: "test.tone", Name: "Tone"}
	newSimple := func(d Descriptor) func(HostShared) Plugin {
		return func(h HostShared) Plugin { return NewSimple(d, h, nil, nil) }
	}
	reg := NewRegistry(Entry{gain, newSimple(gain)}, Entry{tone, newSimple(tone)})

	assert.Equal(t, 2, reg.Count())
	d, ok := reg.Descriptor(1)
	require.True(t, ok)
	assert.Equal(t, tone, d)
	_, ok = reg.Descriptor(2)
	assert.False(t, ok)
	assert.Equal(t, []Descriptor{gain, tone}, Descriptors(reg))

	p, err := reg.Create(&fakeHost{}, "test.gain")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = reg.Create(&fakeHost{}, "test.missing")
	assert.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	d := Descriptor{ID: "dup", Name: "Dup"}
	assert.Panics(t, func() {
		NewRegistry(Entry{Descriptor: d}, Entry{Descriptor: d})
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "sleep", StatusSleep.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
