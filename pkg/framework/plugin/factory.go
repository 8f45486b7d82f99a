package plugin

import "fmt"

// Entry is one plugin a Registry can create.
type Entry struct {
	Descriptor Descriptor
	New        func(host HostShared) Plugin
}

// Registry is a Factory over a fixed list of entries, in listing order.
type Registry struct {
	entries []Entry
}

// NewRegistry creates a factory. It panics on an invalid or duplicate descriptor.
func NewRegistry(entries ...Entry) *Registry {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := e.Descriptor.Validate(); err != nil {
			panic(err)
		}
		if seen[e.Descriptor.ID] {
			panic(fmt.Sprintf("duplicate plugin id %s", e.Descriptor.ID))
		}
		seen[e.Descriptor.ID] = true
	}
	return &Registry{entries: entries}
}

// Count implements Factory.
func (r *Registry) Count() int { return len(r.entries) }

// Descriptor implements Factory.
func (r *Registry) Descriptor(index int) (Descriptor, bool) {
	if index < 0 || index >= len(r.entries) {
		return Descriptor{}, false
	}
	return r.entries[index].Descriptor, true
}

// Create implements Factory.
func (r *Registry) Create(host HostShared, id string) (Plugin, error) {
	for _, e := range r.entries {
		if e.Descriptor.ID == id {
			p := e.New(host)
			if p == nil {
				return nil, fmt.Errorf("plugin %s: constructor returned nil", id)
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, id)
}

// Descriptors lists every descriptor a factory advertises.
func Descriptors(f Factory) []Descriptor {
	out := make([]Descriptor, 0, f.Count())
	for i := 0; i < f.Count(); i++ {
		if d, ok := f.Descriptor(i); ok {
			out = append(out, d)
		}
	}
	return out
}
