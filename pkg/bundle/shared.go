package bundle

import (
	"fmt"
	goplugin "plugin"

	"github.com/justyntemme/plughost/pkg/framework/plugin"
)

func loadShared(path string) (plugin.Factory, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", path, err)
	}
	sym, err := p.Lookup(FactorySymbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNoFactory, err)
	}
	return factoryFromSymbol(path, sym)
}

// factoryFromSymbol accepts a plugin.Factory variable (Lookup returns a
// pointer to it), a value implementing Factory, or a constructor function.
func factoryFromSymbol(path string, sym goplugin.Symbol) (plugin.Factory, error) {
	switch v := sym.(type) {
	case *plugin.Factory:
		if v != nil && *v != nil {
			return *v, nil
		}
	case plugin.Factory:
		if v != nil {
			return v, nil
		}
	case func() plugin.Factory:
		if f := v(); f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%s: %w: %s has type %T", path, ErrNoFactory, FactorySymbol, sym)
}
