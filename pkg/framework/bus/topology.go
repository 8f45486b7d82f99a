package bus

import "fmt"

// Port is one active audio bus as the host lays it out in its flat channel list.
type Port struct {
	Name     string
	Channels int
	Latency  uint32
	// First is the index of the port's first channel in the flat channel list.
	First int
}

// Topology is the channel layout negotiated at activation. It stays constant
// for an Activated or Processing session; a change needs reactivation.
type Topology struct {
	Inputs         []Port
	Outputs        []Port
	InputChannels  int
	OutputChannels int
	EventInput     bool
}

// NewTopology flattens the active audio buses of c.
func NewTopology(c *Configuration) Topology {
	t := Topology{EventInput: c.HasEventInput()}
	for _, info := range c.GetActiveBuses(MediaTypeAudio, DirectionInput) {
		t.Inputs = append(t.Inputs, Port{
			Name:     info.Name,
			Channels: int(info.ChannelCount),
			Latency:  info.Latency,
			First:    t.InputChannels,
		})
		t.InputChannels += int(info.ChannelCount)
	}
	for _, info := range c.GetActiveBuses(MediaTypeAudio, DirectionOutput) {
		t.Outputs = append(t.Outputs, Port{
			Name:     info.Name,
			Channels: int(info.ChannelCount),
			Latency:  info.Latency,
			First:    t.OutputChannels,
		})
		t.OutputChannels += int(info.ChannelCount)
	}
	return t
}

// Equal reports whether two topologies have the same ports in the same order.
func (t Topology) Equal(o Topology) bool {
	if t.InputChannels != o.InputChannels || t.OutputChannels != o.OutputChannels || t.EventInput != o.EventInput {
		return false
	}
	if len(t.Inputs) != len(o.Inputs) || len(t.Outputs) != len(o.Outputs) {
		return false
	}
	for i := range t.Inputs {
		if t.Inputs[i] != o.Inputs[i] {
			return false
		}
	}
	for i := range t.Outputs {
		if t.Outputs[i] != o.Outputs[i] {
			return false
		}
	}
	return true
}

// InputNames returns the engine port names for the flat input channel list.
func (t Topology) InputNames() []string {
	return ChannelNames("input", t.InputChannels)
}

// OutputNames returns the engine port names for the flat output channel list.
func (t Topology) OutputNames() []string {
	return ChannelNames("output", t.OutputChannels)
}

// String summarises the layout for logs.
func (t Topology) String() string {
	return fmt.Sprintf("%d in (%d ports) / %d out (%d ports), events=%t",
		t.InputChannels, len(t.Inputs), t.OutputChannels, len(t.Outputs), t.EventInput)
}

// ChannelNames names n engine channels. Stereo keeps the conventional
// front-left/front-right suffixes, anything else is numbered from 1.
func ChannelNames(prefix string, n int) []string {
	names := make([]string, n)
	if n == 2 {
		names[0] = prefix + "_FL"
		names[1] = prefix + "_FR"
		return names
	}
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	return names
}
