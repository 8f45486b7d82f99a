package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plughost/pkg/bundle"
	"github.com/justyntemme/plughost/pkg/config"
	"github.com/justyntemme/plughost/pkg/engine/offline"
	"github.com/justyntemme/plughost/pkg/framework/debug"
)

type result struct {
	err    error
	stdout string
	stderr string
	exit   int
}

func execute(args ...string) result {
	var stdout, stderr bytes.Buffer
	r := result{exit: -1}
	a := &app{stdout: &stdout, stderr: &stderr, exit: func(code int) { r.exit = code }}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	r.err = cmd.Execute()
	r.stdout, r.stderr = stdout.String(), stderr.String()
	return r
}

var headless = []string{"--backend", "offline", "--realtime=false", "--blocks", "50", "--log-level", "debug"}

func TestRunBuiltinHeadless(t *testing.T) {
	r := execute(append(headless, "builtin:passthrough")...)

	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "dev.plughost.passthrough Passthrough\n", r.stdout)
	assert.Equal(t, -1, r.exit)
	assert.Contains(t, r.stderr, "offline run complete after 50 blocks")
	assert.Contains(t, r.stderr, "plughost_blocks_total 50")
}

func TestRunListsEveryDescriptor(t *testing.T) {
	r := execute(append(headless, "builtin:all", "2")...)

	require.NoError(t, r.err, r.stderr)
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	assert.Equal(t, []string{
		"dev.plughost.passthrough Passthrough",
		"dev.plughost.gain Gain",
		"dev.plughost.tone Tone",
	}, lines)
	assert.Contains(t, r.stderr, "loaded Tone")
	assert.Contains(t, r.stderr, "descriptor 1: dev.plughost.gain uid "+bundle.GainDescriptor.UID().String())
	assert.Contains(t, r.stderr, "uid "+bundle.ToneDescriptor.UID().String()+") from builtin:all")
}

func TestRunMissingPath(t *testing.T) {
	r := execute()

	require.Error(t, r.err)
	assert.Contains(t, r.stderr, "Usage:")
	assert.Contains(t, r.stderr, "plughost <bundle-path> [plugin-index]")
}

func TestRunNonNumericIndex(t *testing.T) {
	r := execute(append(headless, "builtin:all", "second")...)

	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stderr, `ignoring plugin index "second"`)
	assert.Contains(t, r.stderr, "loaded Passthrough")
}

func TestRunIndexOutOfRangeIsFatal(t *testing.T) {
	r := execute(append(headless, "builtin:passthrough", "3")...)

	require.Error(t, r.err)
	assert.Equal(t, 1, r.exit)
	assert.Contains(t, r.stderr, "FATAL")
	assert.Contains(t, r.stderr, "plugin index out of range")
	assert.NotContains(t, r.stderr, "Usage:")
}

func TestRunUnknownBundleIsFatal(t *testing.T) {
	r := execute(append(headless, "builtin:nothing")...)

	require.Error(t, r.err)
	assert.Equal(t, 1, r.exit)
	assert.Empty(t, r.stdout)
}

func TestRunRejectsBadConfig(t *testing.T) {
	r := execute("--backend", "jack", "builtin:passthrough")

	require.Error(t, r.err)
	assert.Contains(t, r.stderr, "engine.backend")
}

func TestParseIndex(t *testing.T) {
	log := debug.New(&bytes.Buffer{}, "", debug.FormatConsole)

	assert.Equal(t, 0, parseIndex([]string{"x"}, log))
	assert.Equal(t, 4, parseIndex([]string{"x", "4"}, log))
	assert.Equal(t, 0, parseIndex([]string{"x", "four"}, log))
	assert.Equal(t, -1, parseIndex([]string{"x", "-1"}, log))
}

func TestNewEngine(t *testing.T) {
	cfg, err := config.Load(map[string]any{"engine.backend": "offline", "engine.block_size": 256})
	require.NoError(t, err)

	eng, err := newEngine(cfg, debug.Default())
	require.NoError(t, err)
	defer eng.Close()
	require.IsType(t, &offline.Engine{}, eng)
	assert.Equal(t, uint32(256), eng.BufferSize())
	assert.Equal(t, "plughost", eng.Name())
}
