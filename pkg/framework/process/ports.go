package process

import "github.com/justyntemme/plughost/pkg/framework/bus"

// Port is the block view of one audio bus.
type Port struct {
	Name     string
	Channels [][]float32
	// Latency is the delay in samples the plugin reported for this port.
	Latency uint32
}

// Ports is every active port of one direction. Channels is the flat channel
// list in port order; each Port's Channels aliases a sub-slice of it.
type Ports struct {
	Buses    []Port
	Channels [][]float32
}

// NewPorts lays a topology's ports over channels. It panics if channels is
// shorter than the ports require.
func NewPorts(layout []bus.Port, channels [][]float32) Ports {
	p := Ports{Buses: make([]Port, len(layout)), Channels: channels}
	for i, port := range layout {
		p.Buses[i] = Port{
			Name:     port.Name,
			Channels: channels[port.First : port.First+port.Channels : port.First+port.Channels],
			Latency:  port.Latency,
		}
	}
	return p
}

// NumChannels returns the total channel count over all ports.
func (p Ports) NumChannels() int {
	return len(p.Channels)
}

// Frames returns the block length, or 0 when there are no channels.
func (p Ports) Frames() int {
	if len(p.Channels) == 0 {
		return 0
	}
	return len(p.Channels[0])
}

// Bus returns the channels of port index, or nil when it does not exist.
func (p Ports) Bus(index int) [][]float32 {
	if index >= 0 && index < len(p.Buses) {
		return p.Buses[index].Channels
	}
	return nil
}

// Main returns the first port's channels.
func (p Ports) Main() [][]float32 {
	return p.Bus(0)
}

// Clear zeroes every channel.
func (p Ports) Clear() {
	for _, ch := range p.Channels {
		clear(ch)
	}
}
