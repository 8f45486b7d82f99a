package host

import (
	"sync/atomic"

	"github.com/justyntemme/plughost/pkg/framework/plugin"
)

// sharedHost is the thread-safe handle every plugin call may use. Restart
// and callback requests are relayed to the controller; a process request
// only raises a flag the process loop reads before the next block.
type sharedHost struct {
	info    plugin.HostInfo
	metrics *Metrics

	restart  chan struct{}
	callback chan struct{}
	wake     atomic.Bool
}

func newSharedHost(info plugin.HostInfo, metrics *Metrics) *sharedHost {
	return &sharedHost{
		info:     info,
		metrics:  metrics,
		restart:  make(chan struct{}, 1),
		callback: make(chan struct{}, 1),
	}
}

func (h *sharedHost) Info() plugin.HostInfo { return h.info }

// RequestRestart never blocks; requests made before the controller gets to
// the first one collapse into it.
func (h *sharedHost) RequestRestart() {
	h.metrics.restartRequests.Inc()
	select {
	case h.restart <- struct{}{}:
	default:
	}
}

func (h *sharedHost) RequestProcess() {
	h.metrics.processRequests.Inc()
	h.wake.Store(true)
}

func (h *sharedHost) RequestCallback() {
	h.metrics.callbackRequests.Inc()
	select {
	case h.callback <- struct{}{}:
	default:
	}
}

// takeWake reports and clears a pending process request.
func (h *sharedHost) takeWake() bool {
	return h.wake.Load() && h.wake.Swap(false)
}

// mainHost is handed to Init only.
type mainHost struct {
	*sharedHost
	portsChanged atomic.Bool
}

// PortsChanged takes effect at the next restart, so it asks for one.
func (h *mainHost) PortsChanged() {
	h.portsChanged.Store(true)
	h.RequestRestart()
}

// audioHost is handed to Activate and may be used from Process.
type audioHost struct {
	*sharedHost
	steady    atomic.Int64
	blockSize atomic.Uint32
}

func (h *audioHost) SteadyTime() int64 { return h.steady.Load() }

func (h *audioHost) BlockSize() uint32 { return h.blockSize.Load() }

var (
	_ plugin.HostShared      = (*sharedHost)(nil)
	_ plugin.HostMainThread  = (*mainHost)(nil)
	_ plugin.HostAudioThread = (*audioHost)(nil)
)
