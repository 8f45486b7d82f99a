package midi

import "sync/atomic"

// Reporter receives translation warnings on the audio thread. Implementations
// must not block; the arguments are plain values so a call that ends up
// suppressed costs no allocation.
type Reporter interface {
	// Oversized reports a message of size bytes at frame that was skipped.
	Oversized(frame uint32, size int)
	// Overflow reports that dropped messages did not fit a batch of capacity.
	Overflow(capacity int, dropped uint64)
}

type nopReporter struct{}

func (nopReporter) Oversized(uint32, int) {}
func (nopReporter) Overflow(int, uint64)  {}

// Translator converts the engine's raw timed messages into a Batch, one block
// at a time. Translate must only be called from the audio thread; the
// counters may be read from anywhere.
type Translator struct {
	batch    *Batch
	reporter Reporter

	translated atomic.Uint64
	skipped    atomic.Uint64
	dropped    atomic.Uint64
}

// NewTranslator creates a translator whose batches hold capacity messages.
func NewTranslator(capacity int, reporter Reporter) *Translator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Translator{
		batch:    NewBatch(capacity),
		reporter: reporter,
	}
}

// Translate rebuilds the batch from raw. Payloads wider than MaxMessageSize
// are skipped with a warning. An empty payload is forwarded as a zero-size
// message. Messages beyond the batch capacity are dropped and reported once
// for the block.
func (t *Translator) Translate(raw []RawEvent) *Batch {
	t.batch.Clear()

	var dropped uint64
	for i := range raw {
		ev := &raw[i]
		n := len(ev.Bytes)
		if n > MaxMessageSize {
			t.skipped.Add(1)
			t.reporter.Oversized(ev.Time, n)
			continue
		}

		m := Message{Time: ev.Time, Size: uint8(n)}
		copy(m.Data[:], ev.Bytes)
		if !t.batch.Push(m) {
			dropped++
			continue
		}
		t.translated.Add(1)
	}

	if dropped > 0 {
		t.dropped.Add(dropped)
		t.reporter.Overflow(t.batch.Cap(), dropped)
	}
	return t.batch
}

// Batch returns the batch built by the last Translate call.
func (t *Translator) Batch() *Batch { return t.batch }

func (t *Translator) Translated() uint64 { return t.translated.Load() }

func (t *Translator) Skipped() uint64 { return t.skipped.Load() }

func (t *Translator) Dropped() uint64 { return t.dropped.Load() }
