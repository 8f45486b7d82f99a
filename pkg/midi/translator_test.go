package midi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	warnings []string
}

func (r *recordingReporter) Oversized(frame uint32, size int) {
	r.warnings = append(r.warnings, fmt.Sprintf("frame %d: %d bytes", frame, size))
}

func (r *recordingReporter) Overflow(capacity int, dropped uint64) {
	r.warnings = append(r.warnings, fmt.Sprintf("capacity %d: dropped %d", capacity, dropped))
}

func TestTranslateAcceptsShortPayloads(t *testing.T) {
	for n := 0; n <= MaxMessageSize; n++ {
		t.Run(fmt.Sprintf("%d bytes", n), func(t *testing.T) {
			payload := []byte{0x93, 0x40, 0x7F}[:n:n]
			tr := NewTranslator(0, nil)

			batch := tr.Translate([]RawEvent{{Time: 17, Bytes: payload}})

			require.Equal(t, 1, batch.Len())
			m := batch.At(0)
			assert.Equal(t, uint32(17), m.Time)
			assert.Equal(t, uint16(0), m.Port)
			assert.Equal(t, payload, m.Bytes())
			assert.Equal(t, uint64(1), tr.Translated())
		})
	}
}

func TestTranslateSkipsOversized(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTranslator(0, rep)

	batch := tr.Translate([]RawEvent{
		{Time: 0, Bytes: []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}},
		{Time: 1, Bytes: []byte{0x90, 60, 100, 0}},
		{Time: 2, Bytes: []byte{0x90, 60, 100}},
	})

	require.Equal(t, 1, batch.Len())
	assert.Equal(t, uint32(2), batch.At(0).Time)
	assert.Equal(t, uint64(2), tr.Skipped())
	require.Len(t, rep.warnings, 2)
	assert.Equal(t, "frame 0: 6 bytes", rep.warnings[0])
	assert.Equal(t, "frame 1: 4 bytes", rep.warnings[1])
}

func TestTranslateForwardsEmptyPayload(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTranslator(0, rep)

	batch := tr.Translate([]RawEvent{{Time: 5, Bytes: []byte{}}, {Time: 6, Bytes: nil}})

	require.Equal(t, 2, batch.Len())
	m := batch.At(0)
	assert.Equal(t, Message{Time: 5}, m)
	assert.Empty(t, m.Bytes())
	assert.Zero(t, tr.Skipped())
	assert.Equal(t, uint64(2), tr.Translated())
	assert.Empty(t, rep.warnings)
}

func TestTranslateCapacityOverflow(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTranslator(4, rep)

	raw := make([]RawEvent, 10)
	for i := range raw {
		raw[i] = RawEvent{Time: uint32(i), Bytes: []byte{0xF8}}
	}
	batch := tr.Translate(raw)

	assert.Equal(t, 4, batch.Len())
	assert.Equal(t, uint64(6), tr.Dropped())
	assert.Equal(t, uint64(4), tr.Translated())
	require.Len(t, rep.warnings, 1)
	assert.Contains(t, rep.warnings[0], "dropped 6")
}

func TestTranslateRebuildsEachBlock(t *testing.T) {
	tr := NewTranslator(0, nil)
	tr.Translate([]RawEvent{{Time: 0, Bytes: []byte{0xF8}}, {Time: 1, Bytes: []byte{0xF8}}})

	batch := tr.Translate(nil)
	assert.Equal(t, 0, batch.Len())
	assert.Same(t, batch, tr.Batch())
	assert.Equal(t, uint64(2), tr.Translated())
}

func TestTranslatePreservesOrder(t *testing.T) {
	tr := NewTranslator(0, nil)
	batch := tr.Translate([]RawEvent{
		{Time: 5, Bytes: []byte{0x90, 1, 1}},
		{Time: 5, Bytes: []byte{0x90, 2, 1}},
		{Time: 3, Bytes: []byte{0x90, 3, 1}},
	})

	require.Equal(t, 3, batch.Len())
	assert.Equal(t, byte(3), batch.At(0).Data[1])
	assert.Equal(t, byte(1), batch.At(1).Data[1])
	assert.Equal(t, byte(2), batch.At(2).Data[1])
}
