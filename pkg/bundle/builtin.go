package bundle

import (
	"fmt"
	"sort"

	"github.com/justyntemme/plughost/pkg/framework/plugin"
)

const builtinVendor = "plughost"

var builtins = map[string]func() plugin.Factory{
	"passthrough": func() plugin.Factory {
		return plugin.NewRegistry(plugin.Entry{Descriptor: PassthroughDescriptor, New: NewPassthrough})
	},
	"gain": func() plugin.Factory {
		return plugin.NewRegistry(plugin.Entry{Descriptor: GainDescriptor, New: NewGain})
	},
	"tone": func() plugin.Factory {
		return plugin.NewRegistry(plugin.Entry{Descriptor: ToneDescriptor, New: NewTone})
	},
	// all lists every builtin plugin in one bundle
	"all": func() plugin.Factory {
		return plugin.NewRegistry(
			plugin.Entry{Descriptor: PassthroughDescriptor, New: NewPassthrough},
			plugin.Entry{Descriptor: GainDescriptor, New: NewGain},
			plugin.Entry{Descriptor: ToneDescriptor, New: NewTone},
		)
	},
}

// Builtin returns the factory of an in-process bundle by name (without the
// builtin: prefix).
func Builtin(name string) (plugin.Factory, error) {
	newFactory, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s%s (have %v)", ErrUnknownBundle, BuiltinScheme, name, BuiltinNames())
	}
	return newFactory(), nil
}

// BuiltinNames lists the registered builtin bundles, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
