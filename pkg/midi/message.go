package midi

import "fmt"

// MaxMessageSize is the fixed width of a Message payload. Longer engine
// payloads (SysEx) cannot be represented and are skipped.
const MaxMessageSize = 3

// RawEvent is one timed message as the engine delivers it. Time is the frame
// offset within the current block. Bytes is only valid during the callback.
type RawEvent struct {
	Time  uint32
	Bytes []byte
}

// Message is a translated event in the plugin's fixed-width encoding.
type Message struct {
	Time uint32
	// Port is the plugin's logical event port. The host always routes to 0;
	// the channel stays in the status byte.
	Port uint16
	Data [MaxMessageSize]byte
	Size uint8
}

// Bytes returns the meaningful part of Data.
func (m *Message) Bytes() []byte {
	return m.Data[:m.Size]
}

func (m Message) String() string {
	return fmt.Sprintf("Message{time:%d, port:%d, data:% x}", m.Time, m.Port, m.Data[:m.Size])
}

// Type classifies the message by its status byte. It returns false for
// running-status data, SysEx and undefined system messages, and for channel
// messages shorter than their status requires. A note-on with zero velocity
// is a note-off.
func (m Message) Type() (EventType, bool) {
	if m.Size == 0 || m.Data[0] < 0x80 {
		return 0, false
	}
	status := m.Data[0]
	switch status & 0xF0 {
	case 0x80:
		return EventTypeNoteOff, m.Size == 3
	case 0x90:
		if m.Data[2]&0x7F == 0 {
			return EventTypeNoteOff, m.Size == 3
		}
		return EventTypeNoteOn, m.Size == 3
	case 0xA0:
		return EventTypePolyPressure, m.Size == 3
	case 0xB0:
		return EventTypeControlChange, m.Size == 3
	case 0xC0:
		return EventTypeProgramChange, m.Size >= 2
	case 0xD0:
		return EventTypeChannelPressure, m.Size >= 2
	case 0xE0:
		return EventTypePitchBend, m.Size == 3
	}
	switch status {
	case 0xF8:
		return EventTypeClock, true
	case 0xFA:
		return EventTypeStart, true
	case 0xFB:
		return EventTypeContinue, true
	case 0xFC:
		return EventTypeStop, true
	case 0xFE:
		return EventTypeActiveSensing, true
	case 0xFF:
		return EventTypeReset, true
	}
	return 0, false
}

func (m Message) base() BaseEvent {
	return BaseEvent{EventChannel: m.Data[0] & 0x0F, Offset: int32(m.Time)}
}

func (m Message) is(t EventType) bool {
	got, ok := m.Type()
	return ok && got == t
}

// The typed accessors return values, so plugins can decode on the audio
// thread without allocating.

// NoteOn decodes a note-on with non-zero velocity.
func (m Message) NoteOn() (NoteOnEvent, bool) {
	if !m.is(EventTypeNoteOn) {
		return NoteOnEvent{}, false
	}
	return NoteOnEvent{BaseEvent: m.base(), NoteNumber: m.Data[1] & 0x7F, Velocity: m.Data[2] & 0x7F}, true
}

// NoteOff decodes a note-off, including a note-on with zero velocity.
func (m Message) NoteOff() (NoteOffEvent, bool) {
	if !m.is(EventTypeNoteOff) {
		return NoteOffEvent{}, false
	}
	e := NoteOffEvent{BaseEvent: m.base(), NoteNumber: m.Data[1] & 0x7F}
	if m.Data[0]&0xF0 == 0x80 {
		e.Velocity = m.Data[2] & 0x7F
	}
	return e, true
}

func (m Message) ControlChange() (ControlChangeEvent, bool) {
	if !m.is(EventTypeControlChange) {
		return ControlChangeEvent{}, false
	}
	return ControlChangeEvent{BaseEvent: m.base(), Controller: m.Data[1] & 0x7F, Value: m.Data[2] & 0x7F}, true
}

func (m Message) PitchBend() (PitchBendEvent, bool) {
	if !m.is(EventTypePitchBend) {
		return PitchBendEvent{}, false
	}
	value := int16(uint16(m.Data[1]&0x7F)|uint16(m.Data[2]&0x7F)<<7) - 8192
	return PitchBendEvent{BaseEvent: m.base(), Value: value}, true
}
