package midi

// DefaultCapacity is the number of events a block can carry unless configured otherwise.
const DefaultCapacity = 256

// Sink receives events a plugin emits during a block.
type Sink interface {
	// Push stores m and reports whether it was kept.
	Push(m Message) bool
}

type voidSink struct{}

func (voidSink) Push(Message) bool { return false }

// Void discards everything pushed to it.
var Void Sink = voidSink{}

// Batch is the ordered, capacity-bounded event list for one block. Messages
// are kept in non-decreasing Time order; equal times keep arrival order.
// The backing array is allocated once, so Push and Clear never allocate.
type Batch struct {
	msgs []Message
}

// NewBatch creates a batch holding at most capacity messages. A non-positive
// capacity selects DefaultCapacity.
func NewBatch(capacity int) *Batch {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Batch{msgs: make([]Message, 0, capacity)}
}

// Push inserts m at its ordered position. It returns false when the batch is full.
func (b *Batch) Push(m Message) bool {
	n := len(b.msgs)
	if n == cap(b.msgs) {
		return false
	}
	b.msgs = b.msgs[:n+1]
	if n == 0 || b.msgs[n-1].Time <= m.Time {
		b.msgs[n] = m
		return true
	}

	// Late arrival: place after every message with Time <= m.Time.
	i := n
	for i > 0 && b.msgs[i-1].Time > m.Time {
		i--
	}
	copy(b.msgs[i+1:], b.msgs[i:n])
	b.msgs[i] = m
	return true
}

func (b *Batch) Len() int { return len(b.msgs) }

func (b *Batch) Cap() int { return cap(b.msgs) }

func (b *Batch) Full() bool { return len(b.msgs) == cap(b.msgs) }

// At returns the i-th message in order.
func (b *Batch) At(i int) Message { return b.msgs[i] }

// Messages returns the ordered messages. The slice is reused by the next block.
func (b *Batch) Messages() []Message { return b.msgs }

// Clear empties the batch, keeping its storage.
func (b *Batch) Clear() { b.msgs = b.msgs[:0] }
