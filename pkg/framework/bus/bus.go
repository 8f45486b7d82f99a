// Package bus describes the audio and event ports a plugin exposes to the host.
package bus

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool

	// Latency is reported to the plugin with the port's buffers, in samples.
	Latency uint32
}

// Configuration manages audio and event buses
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

// NewStereoConfiguration creates the default host-facing layout: stereo in,
// stereo out and one event input.
func NewStereoConfiguration() *Configuration {
	return &Configuration{
		audioBuses: []Info{
			{
				MediaType:    MediaTypeAudio,
				Direction:    DirectionInput,
				ChannelCount: 2,
				Name:         "Stereo In",
				BusType:      TypeMain,
				IsActive:     true,
			},
			{
				MediaType:    MediaTypeAudio,
				Direction:    DirectionOutput,
				ChannelCount: 2,
				Name:         "Stereo Out",
				BusType:      TypeMain,
				IsActive:     true,
			},
		},
		eventBuses: []Info{
			{
				MediaType:    MediaTypeEvent,
				Direction:    DirectionInput,
				ChannelCount: 1,
				Name:         "MIDI In",
				BusType:      TypeMain,
				IsActive:     true,
			},
		},
	}
}

func (c *Configuration) buses(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.eventBuses
	}
	return c.audioBuses
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.buses(mediaType)

	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}

	return nil
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

// SetBusActive activates or deactivates a bus. It reports whether the bus exists.
func (c *Configuration) SetBusActive(mediaType MediaType, direction Direction, index int32, active bool) bool {
	info := c.GetBusInfo(mediaType, direction, index)
	if info == nil {
		return false
	}
	info.IsActive = active
	return true
}

// GetActiveBuses returns copies of the active buses for a type and direction,
// in declaration order.
func (c *Configuration) GetActiveBuses(mediaType MediaType, direction Direction) []Info {
	var active []Info
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction && bus.IsActive {
			active = append(active, bus)
		}
	}
	return active
}

// GetActiveInputChannelCount sums the channels of the active audio inputs.
func (c *Configuration) GetActiveInputChannelCount() int {
	return c.activeChannels(DirectionInput)
}

// GetActiveOutputChannelCount sums the channels of the active audio outputs.
func (c *Configuration) GetActiveOutputChannelCount() int {
	return c.activeChannels(DirectionOutput)
}

func (c *Configuration) activeChannels(direction Direction) int {
	total := 0
	for _, bus := range c.audioBuses {
		if bus.Direction == direction && bus.IsActive {
			total += int(bus.ChannelCount)
		}
	}
	return total
}

// HasEventInput reports whether the plugin accepts timed messages.
func (c *Configuration) HasEventInput() bool {
	for _, bus := range c.eventBuses {
		if bus.Direction == DirectionInput && bus.IsActive {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a snapshot cannot be changed behind the host's back.
func (c *Configuration) Clone() *Configuration {
	return &Configuration{
		audioBuses: append([]Info(nil), c.audioBuses...),
		eventBuses: append([]Info(nil), c.eventBuses...),
	}
}
