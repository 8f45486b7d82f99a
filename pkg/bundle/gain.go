package bundle

import (
	"github.com/justyntemme/plughost/pkg/dsp/gain"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/process"
	"github.com/justyntemme/plughost/pkg/midi"
)

// GainDescriptor describes the volume plugin.
var GainDescriptor = plugin.Descriptor{
	ID:          "dev.plughost.gain",
	Name:        "Gain",
	Version:     "1.0.0",
	Vendor:      builtinVendor,
	Description: "Stereo volume following MIDI CC 7 on any channel",
	Features:    []string{"audio-effect"},
}

const (
	gainFloorDB = -60.0
	// unity until the first volume message
	defaultGain = float32(1.0)
)

// Gain scales its input by the last received channel volume. Changes are
// ramped over one block.
type Gain struct {
	*plugin.Base
	current float32
	target  float32
}

// NewGain creates the volume plugin.
func NewGain(host plugin.HostShared) plugin.Plugin {
	g := &Gain{
		Base:    plugin.NewBase(GainDescriptor, host, nil),
		current: defaultGain,
		target:  defaultGain,
	}
	g.OnReset(func() {
		g.current = g.target
	})
	return g
}

// VolumeToGain maps a 7-bit controller value to an amplitude on a decibel
// scale. 0 is silence and 127 is unity.
func VolumeToGain(value uint8) float32 {
	if value == 0 {
		return 0
	}
	db := gainFloorDB * (1 - float32(value)/127)
	return gain.DbToLinear32(db)
}

// Target returns the gain the plugin is moving towards.
func (g *Gain) Target() float32 { return g.target }

// Process implements plugin.Plugin.
func (g *Gain) Process(ctx *process.Context) (plugin.Status, error) {
	if ctx.InputEvents != nil {
		for _, m := range ctx.InputEvents.Messages() {
			if cc, ok := m.ControlChange(); ok && cc.Controller == midi.CCVolume {
				g.target = VolumeToGain(cc.Value)
			}
		}
	}

	start, end := g.current, g.target
	ctx.ProcessChannels(func(_ int, input, output []float32) {
		gain.RampTo(output, input, start, end)
	})
	g.current = end
	return plugin.StatusContinueIfNotQuiet, nil
}
