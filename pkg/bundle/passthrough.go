package bundle

import (
	"github.com/justyntemme/plughost/pkg/framework/plugin"
	"github.com/justyntemme/plughost/pkg/framework/process"
)

// PassthroughDescriptor describes the identity plugin.
var PassthroughDescriptor = plugin.Descriptor{
	ID:          "dev.plughost.passthrough",
	Name:        "Passthrough",
	Version:     "1.0.0",
	Vendor:      builtinVendor,
	Description: "Copies every input channel to the matching output channel",
	Features:    []string{"audio-effect", "utility"},
}

// NewPassthrough creates the identity plugin: stereo in, stereo out and an
// event input whose messages are ignored.
func NewPassthrough(host plugin.HostShared) plugin.Plugin {
	return plugin.NewSimple(PassthroughDescriptor, host, nil, func(ctx *process.Context) plugin.Status {
		ctx.PassThrough()
		return plugin.StatusContinue
	})
}
