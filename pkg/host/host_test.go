package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plughost/pkg/bundle"
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/state"
)

func TestOpenSelectsDescriptor(t *testing.T) {
	opts, _, _ := testOptions()
	h, err := Open("builtin:all", 2, opts)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, bundle.ToneDescriptor.ID, h.Descriptor().ID)
	assert.Equal(t, state.Loaded, h.Machine().State())
	assert.NotEqual(t, [16]byte{}, [16]byte(h.ID()))
}

func TestOpenErrors(t *testing.T) {
	opts, _, _ := testOptions()

	_, err := Open("builtin:passthrough", 1, opts)
	assert.ErrorIs(t, err, bundle.ErrIndexOutOfRange)

	_, err = Open("builtin:missing", 0, opts)
	assert.ErrorIs(t, err, bundle.ErrUnknownBundle)
}

type failingInit struct {
	*plugin.SimplePlugin
	destroyed *bool
}

var errInit = errors.New("no license")

func (p failingInit) Init(plugin.HostMainThread) error { return errInit }
func (p failingInit) Destroy()                         { *p.destroyed = true }

func TestOpenInitFailureDestroys(t *testing.T) {
	opts, _, _ := testOptions()
	destroyed := false
	factory := plugin.NewRegistry(plugin.Entry{
		Descriptor: recorderDescriptor,
		New: func(h plugin.HostShared) plugin.Plugin {
			return failingInit{SimplePlugin: plugin.NewSimple(recorderDescriptor, h, nil, nil), destroyed: &destroyed}
		},
	})

	_, err := OpenBundle(&bundle.Bundle{Path: "test", Factory: factory}, 0, opts)
	assert.ErrorIs(t, err, errInit)
	assert.True(t, destroyed)
}

func TestHostCapabilities(t *testing.T) {
	opts, _, _ := testOptions()
	h, p := openRecorder(t, opts, nil)
	defer h.Close()

	info := p.Host().Info()
	assert.Equal(t, "plughost", info.Name)
	assert.Equal(t, Version, info.Version)

	// requests collapse until the controller takes them
	h.shared.RequestRestart()
	h.shared.RequestRestart()
	assert.Len(t, h.shared.restart, 1)

	h.main.PortsChanged()
	assert.True(t, h.main.portsChanged.Load())
	assert.Len(t, h.shared.restart, 1)

	assert.False(t, h.shared.takeWake())
	h.shared.RequestProcess()
	assert.True(t, h.shared.takeWake())
	assert.False(t, h.shared.takeWake())
}

func TestHostCustomInfo(t *testing.T) {
	opts, _, _ := testOptions()
	opts.Info = plugin.HostInfo{Name: "bench", Version: "9"}
	h, p := openRecorder(t, opts, nil)
	defer h.Close()

	assert.Equal(t, "bench", p.Host().Info().Name)
}

func TestHostCloseIsIdempotent(t *testing.T) {
	opts, _, _ := testOptions()
	h, p := activated(t, 64, opts, nil)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, state.Loaded, h.Machine().State())
	assert.Equal(t, 1, p.destroys)
	assert.Equal(t, 1, p.deactivations)
}
