// Package bundle resolves a bundle path to the plugin factory it exports.
//
// Two kinds of bundle exist: Go shared objects built with
// -buildmode=plugin that export a PluginFactory symbol, and the in-process
// bundles under the builtin: scheme.
package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justyntemme/plughost/pkg/framework/plugin"
)

// FactorySymbol is the exported variable a shared-object bundle must define.
// It must be a plugin.Factory variable or a func() plugin.Factory.
const FactorySymbol = "PluginFactory"

// BuiltinScheme prefixes the names of in-process bundles.
const BuiltinScheme = "builtin:"

var (
	// ErrNoFactory means the bundle loaded but exports no usable factory.
	ErrNoFactory = errors.New("bundle has no plugin factory")
	// ErrIndexOutOfRange means the requested descriptor does not exist.
	ErrIndexOutOfRange = errors.New("plugin index out of range")
	// ErrUnknownBundle means a builtin: name that is not registered.
	ErrUnknownBundle = errors.New("unknown bundle")
)

// Bundle is an opened bundle and its factory.
type Bundle struct {
	Path    string
	Factory plugin.Factory
}

// Open loads the bundle at path.
func Open(path string) (*Bundle, error) {
	var (
		f   plugin.Factory
		err error
	)
	if name, ok := strings.CutPrefix(path, BuiltinScheme); ok {
		f, err = Builtin(name)
	} else {
		f, err = loadShared(path)
	}
	if err != nil {
		return nil, err
	}
	if f.Count() == 0 {
		return nil, fmt.Errorf("%s: %w: factory lists no plugins", path, ErrNoFactory)
	}
	return &Bundle{Path: path, Factory: f}, nil
}

// Descriptors lists every plugin in the bundle, in factory order.
func (b *Bundle) Descriptors() []plugin.Descriptor {
	return plugin.Descriptors(b.Factory)
}

// Select returns the descriptor at index after validating it.
func (b *Bundle) Select(index int) (plugin.Descriptor, error) {
	d, ok := b.Factory.Descriptor(index)
	if !ok {
		return plugin.Descriptor{}, fmt.Errorf("%w: %d (bundle %s has %d plugins)",
			ErrIndexOutOfRange, index, b.Path, b.Factory.Count())
	}
	if err := d.Validate(); err != nil {
		return plugin.Descriptor{}, fmt.Errorf("descriptor %d of %s: %w", index, b.Path, err)
	}
	return d, nil
}
