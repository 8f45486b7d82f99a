package host

import (
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/state"
)

func newReconfigurator(frames uint32, rng state.BlockSizeRange) (*Reconfigurator, *BufferBridge, *Metrics) {
	bridge := NewBufferBridge(stereoTopology(), frames)
	metrics := NewMetrics(nil)
	log := debug.New(io.Discard, "", debug.FormatConsole)
	log.SetLevel(debug.LogLevelOff)
	return NewReconfigurator(bridge, rng, log, metrics), bridge, metrics
}

func TestReconfigureKeepsStagingAtBlockSize(t *testing.T) {
	r, bridge, metrics := newReconfigurator(64, state.BlockSizeRange{Min: 16, Max: 1024})
	r.Preallocate()

	for _, size := range []uint32{16, 17, 100, 128, 1024, 512, 64, 16} {
		require.NoError(t, r.OnBlockSizeChanged(size))

		set := bridge.Staging()
		assert.Equal(t, int(size), bridge.Frames())
		for _, ch := range append(set.Inputs(), set.Outputs()...) {
			assert.Len(t, ch, int(size))
		}
		assert.Equal(t, int(size), bridge.Outputs().Frames())
	}
	assert.Equal(t, 8.0, testutil.ToFloat64(metrics.Reconfigurations))
}

func TestReconfigureSameSizeIsNoop(t *testing.T) {
	r, bridge, metrics := newReconfigurator(64, state.FixedRange(64))
	before := bridge.Staging()

	require.NoError(t, r.OnBlockSizeChanged(64))
	assert.Same(t, before, bridge.Staging())
	assert.Zero(t, testutil.ToFloat64(metrics.Reconfigurations))
}

func TestReconfigureOutOfRange(t *testing.T) {
	r, bridge, _ := newReconfigurator(64, state.BlockSizeRange{Min: 32, Max: 128})
	before := bridge.Staging()

	for _, size := range []uint32{0, 31, 129, 4096} {
		err := r.OnBlockSizeChanged(size)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfRange)

		var rerr *ReconfigureError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, size, rerr.Frames)
		assert.Equal(t, "32..=128", rerr.Range.String())
	}
	assert.Same(t, before, bridge.Staging(), "a rejected size leaves staging alone")
}

func TestReconfigureUsesPreallocatedSets(t *testing.T) {
	r, bridge, _ := newReconfigurator(64, state.BlockSizeRange{Min: 64, Max: 512})
	r.Preallocate()

	pooled := r.pool[256]
	require.NotNil(t, pooled)
	_, current := r.pool[64]
	assert.False(t, current, "the set in use is not pooled")

	first := bridge.Staging()
	require.NoError(t, r.OnBlockSizeChanged(256))
	assert.Same(t, pooled, bridge.Staging())

	require.NoError(t, r.OnBlockSizeChanged(64))
	assert.Same(t, first, bridge.Staging(), "the replaced set is reused")
}

func TestPreallocatedSizes(t *testing.T) {
	tests := []struct {
		rng  state.BlockSizeRange
		want []uint32
	}{
		{state.FixedRange(128), []uint32{128}},
		{state.BlockSizeRange{Min: 64, Max: 512}, []uint32{64, 128, 256, 512}},
		{state.BlockSizeRange{Min: 100, Max: 1000}, []uint32{100, 128, 256, 512, 1000}},
		{state.BlockSizeRange{Min: 1, Max: 4}, []uint32{1, 2, 4}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PreallocatedSizes(tt.rng), tt.rng.String())
	}
}
