package main

import (
	"fmt"

	"github.com/justyntemme/plughost/pkg/config"
	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/engine/miniaudio"
	"github.com/justyntemme/plughost/pkg/engine/offline"
	"github.com/justyntemme/plughost/pkg/engine/portaudio"
	"github.com/justyntemme/plughost/pkg/framework/debug"
)

// newEngine opens the configured backend.
func newEngine(cfg *config.Config, log *debug.Logger) (engine.Engine, error) {
	opts := engine.Options{
		ClientName: cfg.Engine.ClientName,
		SampleRate: cfg.Engine.SampleRate,
		BlockSize:  cfg.Engine.BlockSize,
	}
	switch cfg.Engine.Backend {
	case "offline":
		return offline.New(offline.Config{
			Options:  opts,
			Blocks:   cfg.Engine.Blocks,
			Realtime: cfg.Engine.Realtime,
		})
	case "miniaudio":
		return miniaudio.New(opts, log.Named("miniaudio").Debug)
	case "portaudio":
		return portaudio.New(opts)
	}
	return nil, fmt.Errorf("unknown engine backend %q", cfg.Engine.Backend)
}
