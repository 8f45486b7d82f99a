package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justyntemme/plughost/pkg/framework/debug"
)

func TestLimitedReporter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newLimitedReporter(debug.NewWithCore(core), 2)

	for i := 0; i < 5; i++ {
		r.Oversized(uint32(i), 6)
	}

	assert.Equal(t, 2, logs.Len(), "burst of 2, nothing refilled yet")
	assert.Equal(t, uint64(3), r.Suppressed())
	assert.Equal(t, "skipping timed message at frame 0: 6 bytes (accepted up to 3)", logs.All()[0].Message)
}

func TestLimitedReporterKinds(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newLimitedReporter(debug.NewWithCore(core), 0)

	r.Overflow(256, 4)
	r.NonFinite(1024)

	msgs := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if assert.Len(t, msgs, 2) {
		assert.Equal(t, "event capacity 256 exceeded, dropped 4 messages this block", msgs[0].Message)
		assert.Equal(t, "plugin wrote non-finite samples in block at frame 1024, output silenced", msgs[1].Message)
	}
}

func TestLimitedReporterUnlimited(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newLimitedReporter(debug.NewWithCore(core), 0)

	for i := 0; i < 50; i++ {
		r.Oversized(uint32(i), 4)
	}
	assert.Equal(t, 50, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Zero(t, r.Suppressed())
}

func TestLimitedReporterSuppressedDoesNotAllocate(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	r := newLimitedReporter(debug.NewWithCore(core), 1)
	r.Oversized(0, 4) // spends the burst

	allocs := testing.AllocsPerRun(100, func() {
		r.Oversized(1, 5)
		r.Overflow(256, 1)
		r.NonFinite(64)
	})
	assert.Zero(t, allocs)
	assert.Positive(t, r.Suppressed())
}
