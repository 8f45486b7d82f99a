package miniaudio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestF32Codec(t *testing.T) {
	samples := []float32{0, 0.5, -1, float32(math.Pi)}
	raw := make([]byte, len(samples)*4)

	encodeF32(raw, samples)
	assert.Equal(t, math.Float32bits(0.5), binary.LittleEndian.Uint32(raw[4:]))

	decoded := make([]float32, len(samples))
	decodeF32(decoded, raw)
	assert.Equal(t, samples, decoded)
}

func TestDecodeShortInputZeroFills(t *testing.T) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(0.75))

	dst := []float32{9, 9, 9}
	decodeF32(dst, raw)
	assert.Equal(t, []float32{0.75, 0, 0}, dst)
}

func TestGrowChannels(t *testing.T) {
	chans := [][]float32{make([]float32, 4), make([]float32, 4)}
	chans = growChannels(chans, 2)
	assert.Len(t, chans[0], 2)
	chans = growChannels(chans, 8)
	assert.Len(t, chans[1], 8)
}
