package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Descriptor contains plugin metadata as a bundle advertises it.
type Descriptor struct {
	ID          string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name        string // Display name
	Version     string // Semantic version (e.g., "1.0.0")
	Vendor      string // Company/developer name
	Description string
	Features    []string // e.g. "audio-effect", "instrument"
}

// namespace for UIDs derived from plugin IDs.
var uidNamespace = uuid.MustParse("7b0b6c52-3f0e-4d64-9a3f-2f1c5e9d8a41")

// UID derives a stable identifier from the string ID.
func (d Descriptor) UID() uuid.UUID {
	return uuid.NewSHA1(uidNamespace, []byte(d.ID))
}

// Validate checks that the descriptor can be listed and instantiated.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("plugin descriptor has no id")
	}
	if d.Name == "" {
		return fmt.Errorf("plugin %s has no name", d.ID)
	}
	return nil
}

// String is the "id name" line printed when listing a bundle.
func (d Descriptor) String() string {
	return d.ID + " " + d.Name
}

// HostInfo identifies the host to the plugin.
type HostInfo struct {
	Name    string
	Vendor  string
	URL     string
	Version string
}
