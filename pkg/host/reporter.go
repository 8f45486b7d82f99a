package host

import (
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/midi"
)

// limitedReporter logs audio-thread warnings at most rate times per second.
// Suppressed warnings are counted and mentioned with the next one that gets
// through. Arguments are only formatted once the limiter lets a warning
// pass, so a suppressed warning does not allocate.
type limitedReporter struct {
	log        *debug.Logger
	limiter    *rate.Limiter
	suppressed atomic.Uint64
}

var _ midi.Reporter = (*limitedReporter)(nil)

// newLimitedReporter allows perSecond warnings per second. 0 means no limit.
func newLimitedReporter(log *debug.Logger, perSecond float64) *limitedReporter {
	limit, burst := rate.Limit(perSecond), int(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &limitedReporter{log: log, limiter: rate.NewLimiter(limit, max(burst, 1))}
}

func (r *limitedReporter) allow() bool {
	if !r.limiter.Allow() {
		r.suppressed.Add(1)
		return false
	}
	if n := r.suppressed.Swap(0); n > 0 {
		r.log.Warn("%d similar warnings suppressed", n)
	}
	return true
}

// Oversized implements midi.Reporter.
func (r *limitedReporter) Oversized(frame uint32, size int) {
	if r.allow() {
		r.log.Warn("skipping timed message at frame %d: %d bytes (accepted up to %d)", frame, size, midi.MaxMessageSize)
	}
}

// Overflow implements midi.Reporter.
func (r *limitedReporter) Overflow(capacity int, dropped uint64) {
	if r.allow() {
		r.log.Warn("event capacity %d exceeded, dropped %d messages this block", capacity, dropped)
	}
}

// NonFinite reports a block whose output held NaN or infinite samples.
func (r *limitedReporter) NonFinite(steady int64) {
	if r.allow() {
		r.log.Warn("plugin wrote non-finite samples in block at frame %d, output silenced", steady)
	}
}

// Suppressed returns the number of warnings waiting to be mentioned.
func (r *limitedReporter) Suppressed() uint64 { return r.suppressed.Load() }
