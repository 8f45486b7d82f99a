package host

import (
	"fmt"
	"time"

	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/process"
	"github.com/justyntemme/plughost/pkg/framework/state"
	"github.com/justyntemme/plughost/pkg/midi"
)

// ProcessLoop runs one plugin block per engine callback: copy in, translate
// events, process, copy out. It implements engine.ProcessHandler.
//
// Every failure is fatal. The loop reports it through fatal and answers the
// engine with Quit in case fatal returns. A block where the plugin turns
// finite input into NaN or infinite output is not a failure: it is replaced
// by silence and reported.
type ProcessLoop struct {
	machine    *state.Machine
	bridge     *BufferBridge
	translator *midi.Translator
	reconf     *Reconfigurator
	host       *audioHost
	metrics    *Metrics
	reporter   *limitedReporter
	fatal      func(error)

	ctx      *process.Context
	steady   int64
	sleeping bool
}

var _ engine.ProcessHandler = (*ProcessLoop)(nil)

func newProcessLoop(h *Host, bridge *BufferBridge, reconf *Reconfigurator) *ProcessLoop {
	l := &ProcessLoop{
		machine:    h.machine,
		bridge:     bridge,
		translator: h.translator,
		reconf:     reconf,
		host:       h.audio,
		metrics:    h.metrics,
		reporter:   h.reporter,
		fatal:      h.Fatal,
		ctx:        process.NewContext(int(h.machine.Range().Max)),
		steady:     h.nextSteady,
	}
	l.ctx.SampleRate = h.machine.SampleRate()
	l.ctx.OutputEvents = midi.Void
	l.host.blockSize.Store(uint32(bridge.Frames()))
	return l
}

func (l *ProcessLoop) fail(err error) engine.Control {
	l.fatal(err)
	return engine.Quit
}

// Process implements engine.ProcessHandler.
func (l *ProcessLoop) Process(b *engine.Block) engine.Control {
	start := time.Now()

	if err := l.machine.Require(state.Processing); err != nil {
		return l.fail(fmt.Errorf("process loop: %w", err))
	}

	inputs, err := l.bridge.CopyIn(b.Inputs)
	if err != nil {
		return l.fail(err)
	}
	batch := l.translator.Translate(b.Events)

	steady := l.steady
	if b.FrameTime != engine.NoFrameTime {
		steady = b.FrameTime
	}
	l.steady = steady + int64(b.Frames)
	l.host.steady.Store(steady)

	woken := l.host.takeWake()
	if l.sleeping && !woken && batch.Len() == 0 && debug.IsSilent(inputs.Channels) {
		for _, ch := range b.Outputs {
			clear(ch)
		}
		batch.Clear()
		l.metrics.BlocksSlept.Inc()
		return engine.Continue
	}

	ctx := l.ctx
	ctx.Input = inputs
	ctx.Output = l.bridge.Outputs()
	ctx.InputEvents = batch
	ctx.SteadyTime = steady
	ctx.Transport = nil

	status, err := l.machine.Plugin().Process(ctx)
	if err != nil {
		return l.fail(fmt.Errorf("plugin process at frame %d: %w", steady, err))
	}
	if debug.HasNonFinite(ctx.Output.Channels) && !debug.HasNonFinite(inputs.Channels) {
		for _, ch := range ctx.Output.Channels {
			clear(ch)
		}
		l.metrics.BlocksNonFinite.Inc()
		l.reporter.NonFinite(steady)
	}
	if err := l.bridge.CopyOut(b.Outputs); err != nil {
		return l.fail(err)
	}
	batch.Clear()
	l.sleeping = status == plugin.StatusSleep

	l.metrics.Blocks.Inc()
	l.metrics.ProcessDuration.Observe(time.Since(start).Seconds())
	return engine.Continue
}

// BufferSize implements engine.ProcessHandler.
func (l *ProcessLoop) BufferSize(frames uint32) engine.Control {
	if err := l.reconf.OnBlockSizeChanged(frames); err != nil {
		return l.fail(err)
	}
	l.host.blockSize.Store(frames)
	return engine.Continue
}

// NextSteadyTime is the sample position the next block would start at.
func (l *ProcessLoop) NextSteadyTime() int64 { return l.steady }

// Sleeping reports whether the plugin asked to sleep after its last block.
func (l *ProcessLoop) Sleeping() bool { return l.sleeping }
