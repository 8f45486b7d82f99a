package plugin

// HostShared is the part of the host a plugin may call from any thread.
type HostShared interface {
	Info() HostInfo
	// RequestRestart asks for deactivation and reactivation, e.g. after a latency change.
	RequestRestart()
	// RequestProcess wakes a sleeping plugin for at least one block.
	RequestProcess()
	// RequestCallback schedules OnMainThread on the main thread.
	RequestCallback()
}

// HostMainThread is handed to Init. It must only be used on the main thread.
type HostMainThread interface {
	HostShared
	// PortsChanged reports that Ports would now return a different layout.
	// The host applies it at the next restart.
	PortsChanged()
}

// HostAudioThread is handed to Activate and may be used from Process.
type HostAudioThread interface {
	HostShared
	// SteadyTime is the sample position of the block being processed.
	SteadyTime() int64
	// BlockSize is the number of frames the engine currently delivers.
	BlockSize() uint32
}
