package bundle

import (
	"math"

	"github.com/justyntemme/plughost/pkg/dsp/oscillator"
	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/process"
	"github.com/justyntemme/plughost/pkg/midi"
)

// ToneDescriptor describes the monophonic test tone generator.
var ToneDescriptor = plugin.Descriptor{
	ID:          "dev.plughost.tone",
	Name:        "Tone",
	Version:     "1.0.0",
	Vendor:      builtinVendor,
	Description: "Monophonic sine voice played from note messages",
	Features:    []string{"instrument", "synthesizer", "mono"},
}

const (
	toneTuning    = 440.0
	toneAmplitude = 0.25
	// semitones at full pitch bend
	toneBendRange = 2.0
)

// Tone plays the most recent note as a sine wave. Events are applied at
// their frame offsets. With no note held it goes to sleep.
type Tone struct {
	*plugin.Base
	osc  *oscillator.Oscillator
	note int // -1 when silent
	gain float32
	bend float64
}

// NewTone creates the generator: no audio input, stereo output, event input.
func NewTone(host plugin.HostShared) plugin.Plugin {
	t := &Tone{
		Base: plugin.NewBase(ToneDescriptor, host, bus.NewGenerator()),
		note: -1,
	}
	t.OnActivate(func(cfg plugin.AudioConfiguration) error {
		t.osc = oscillator.New(cfg.SampleRate)
		return nil
	})
	t.OnReset(func() {
		t.note = -1
		t.bend = 0
		if t.osc != nil {
			t.osc.Reset()
		}
	})
	return t
}

// Sounding reports whether a note is held.
func (t *Tone) Sounding() bool { return t.note >= 0 }

func (t *Tone) handle(m midi.Message) {
	kind, ok := m.Type()
	if !ok {
		return
	}
	switch kind {
	case midi.EventTypeNoteOn:
		on, _ := m.NoteOn()
		if t.note < 0 {
			t.osc.Reset()
		}
		t.note = int(on.NoteNumber)
		t.gain = toneAmplitude * float32(on.Velocity) / 127
		t.retune()
	case midi.EventTypeNoteOff:
		off, _ := m.NoteOff()
		if int(off.NoteNumber) == t.note {
			t.note = -1
		}
	case midi.EventTypeControlChange:
		cc, _ := m.ControlChange()
		if cc.Controller == midi.CCAllNotesOff || cc.Controller == midi.CCAllSoundOff {
			t.note = -1
		}
	case midi.EventTypePitchBend:
		pb, _ := m.PitchBend()
		t.bend = pb.NormalizedValue() * toneBendRange
		t.retune()
	case midi.EventTypeStop, midi.EventTypeReset:
		t.note = -1
	}
}

func (t *Tone) retune() {
	if t.note < 0 {
		return
	}
	freq := midi.NoteToFrequency(uint8(t.note), toneTuning) * math.Exp2(t.bend/12)
	t.osc.SetFrequency(freq)
}

func (t *Tone) render(out [][]float32, from, to int) {
	if t.note < 0 || from >= to || len(out) == 0 {
		return
	}
	t.osc.Add(out[0][from:to], t.gain)
	for _, ch := range out[1:] {
		copy(ch[from:to], out[0][from:to])
	}
}

// Process implements plugin.Plugin.
func (t *Tone) Process(ctx *process.Context) (plugin.Status, error) {
	ctx.Clear()
	out := ctx.Output.Channels
	frames := ctx.NumSamples()

	pos := 0
	if ctx.InputEvents != nil {
		for _, m := range ctx.InputEvents.Messages() {
			at := min(int(m.Time), frames)
			t.render(out, pos, at)
			pos = at
			t.handle(m)
		}
	}
	t.render(out, pos, frames)

	if t.note < 0 {
		return plugin.StatusSleep, nil
	}
	return plugin.StatusContinue, nil
}
