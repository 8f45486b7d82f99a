package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/justyntemme/plughost/pkg/bundle"
	"github.com/justyntemme/plughost/pkg/config"
	"github.com/justyntemme/plughost/pkg/framework/debug"
	"github.com/justyntemme/plughost/pkg/framework/state"
	"github.com/justyntemme/plughost/pkg/host"
)

// app carries the process boundary so tests can run the command in-process.
type app struct {
	stdout io.Writer
	stderr io.Writer
	exit   func(code int)
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"backend":        "engine.backend",
	"client-name":    "engine.client_name",
	"sample-rate":    "engine.sample_rate",
	"block-size":     "engine.block_size",
	"blocks":         "engine.blocks",
	"realtime":       "engine.realtime",
	"min-block-size": "host.min_block_size",
	"max-block-size": "host.max_block_size",
	"event-capacity": "host.event_capacity",
	"warn-rate":      "host.warn_rate",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plughost <bundle-path> [plugin-index]",
		Short: "Run an audio plugin on a real-time audio engine",
		Long: `plughost loads a plugin bundle, lists the plugins it contains and runs
one of them on an audio engine with a stereo input, a stereo output and a
MIDI input.

A bundle is a Go shared object built with -buildmode=plugin that exports
PluginFactory, or one of the builtin bundles: ` + fmt.Sprint(bundle.BuiltinNames()) + `.

Settings come from flags, then PLUGHOST_* environment variables
(PLUGHOST_ENGINE_BACKEND=offline), then built-in defaults.

Examples:
  # Run the first plugin of a bundle on the default sound card
  plughost ./gain.so

  # Run the second plugin of a bundle
  plughost ./suite.so 1

  # Headless run of the builtin tone generator for 1000 blocks
  plughost --backend offline --realtime=false --blocks 1000 builtin:tone`,
		Version: host.Version,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// argument errors print usage, runtime errors do not
			cmd.SilenceUsage = true
			return a.run(cmd.Context(), cmd.Flags(), args)
		},
	}
	// usage and help go to stderr; stdout carries only the descriptor listing
	cmd.SetOut(a.stderr)
	cmd.SetErr(a.stderr)

	f := cmd.Flags()
	f.String("backend", "", "audio engine: offline, miniaudio or portaudio")
	f.String("client-name", "", "engine client name")
	f.Float64("sample-rate", 0, "sample rate in Hz")
	f.Uint32("block-size", 0, "frames per block")
	f.Uint64("blocks", 0, "offline backend: number of blocks to run, 0 until interrupted")
	f.Bool("realtime", true, "offline backend: pace blocks at the sample rate")
	f.Uint32("min-block-size", 0, "smallest block size the plugin is activated for")
	f.Uint32("max-block-size", 0, "largest block size the plugin is activated for")
	f.Int("event-capacity", 0, "maximum timed messages per block")
	f.Float64("warn-rate", 0, "translation warnings per second, 0 for no limit")
	f.String("log-level", "", "debug, info, warn, error or off")
	f.String("log-format", "", "console or json")
	return cmd
}

// overrides collects the flags the user actually set.
func overrides(flags *pflag.FlagSet) map[string]any {
	out := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			out[key] = f.Value.String()
		}
	})
	return out
}

// parseIndex returns the plugin index argument. A value that is not a
// number is ignored with a warning.
func parseIndex(args []string, log *debug.Logger) int {
	if len(args) < 2 {
		return 0
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		log.Warn("ignoring plugin index %q: not a number, using 0", args[1])
		return 0
	}
	return index
}

func (a *app) run(ctx context.Context, flags *pflag.FlagSet, args []string) error {
	cfg, err := config.Load(overrides(flags))
	if err != nil {
		return err
	}

	log := debug.New(a.stderr, "plughost", cfg.Log.Format)
	level, _ := debug.ParseLevel(cfg.Log.Level)
	log.SetLevel(level)
	log.SetExitFunc(a.exit)
	defer log.Sync()

	fatal := func(err error) error {
		log.Fatal("%v", err)
		return err
	}

	index := parseIndex(args, log)
	b, err := bundle.Open(args[0])
	if err != nil {
		return fatal(err)
	}
	for i, d := range b.Descriptors() {
		fmt.Fprintln(a.stdout, d.String())
		log.Debug("descriptor %d: %s uid %s", i, d.ID, d.UID())
	}

	lo, hi := cfg.BlockSizeRange()
	h, err := host.OpenBundle(b, index, host.Options{
		Range:         state.BlockSizeRange{Min: lo, Max: hi},
		EventCapacity: cfg.Host.EventCapacity,
		WarnRate:      cfg.Host.WarnRate,
		Logger:        log,
	})
	if err != nil {
		return fatal(err)
	}

	eng, err := newEngine(cfg, log)
	if err != nil {
		h.Close()
		return fatal(err)
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := host.NewController(h, eng).Run(ctx); err != nil {
		return fatal(err)
	}
	return nil
}
