// Package plugin defines the contract between the host and an audio plugin.
package plugin

import (
	"errors"
	"fmt"

	"github.com/justyntemme/plughost/pkg/framework/bus"
	"github.com/justyntemme/plughost/pkg/framework/process"
)

// Status tells the host what a plugin wants after a Process call.
type Status int

const (
	// StatusContinue keeps processing every block.
	StatusContinue Status = iota
	// StatusContinueIfNotQuiet lets the host stop calling Process once the output is silent.
	StatusContinueIfNotQuiet
	// StatusTail means the plugin is still producing a tail (reverb, delay).
	StatusTail
	// StatusSleep means nothing will change until new input, events or a process request.
	StatusSleep
)

func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "continue"
	case StatusContinueIfNotQuiet:
		return "continue-if-not-quiet"
	case StatusTail:
		return "tail"
	case StatusSleep:
		return "sleep"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// AudioConfiguration is negotiated once per activation. Every block the
// engine presents has MinFrames <= frames <= MaxFrames.
type AudioConfiguration struct {
	SampleRate float64
	MinFrames  uint32
	MaxFrames  uint32
}

// Plugin is one instantiated audio processor.
//
// Init, Ports, Activate, Deactivate, OnMainThread and Destroy run on the
// main thread. StartProcessing, Process and StopProcessing run on the audio
// thread.
type Plugin interface {
	Init(host HostMainThread) error
	// Ports reports the bus layout. It is read once per activation.
	Ports() *bus.Configuration
	Activate(cfg AudioConfiguration, host HostAudioThread) error
	Deactivate()

	StartProcessing() error
	StopProcessing()
	// Process renders one block. It must not allocate or block.
	Process(ctx *process.Context) (Status, error)

	// OnMainThread answers a RequestCallback.
	OnMainThread()
	Destroy()
}

// ErrUnknownPlugin is returned by Factory.Create for an id it does not provide.
var ErrUnknownPlugin = errors.New("unknown plugin id")

// Factory enumerates and instantiates the plugins of a bundle.
type Factory interface {
	Count() int
	// Descriptor returns the index-th descriptor, or false when index is out of range.
	Descriptor(index int) (Descriptor, bool)
	Create(host HostShared, id string) (Plugin, error)
}
