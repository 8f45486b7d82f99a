package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopologyStereo(t *testing.T) {
	topo := NewTopology(NewStereoConfiguration())

	assert.Equal(t, 2, topo.InputChannels)
	assert.Equal(t, 2, topo.OutputChannels)
	assert.True(t, topo.EventInput)
	assert.Equal(t, []string{"input_FL", "input_FR"}, topo.InputNames())
	assert.Equal(t, []string{"output_FL", "output_FR"}, topo.OutputNames())
}

func sidechainLayout() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		WithSidechain("Sidechain In").
		SetBusActive(MediaTypeAudio, DirectionInput, 1, true).
		MustBuild()
}

func TestNewTopologyFlattensPorts(t *testing.T) {
	topo := NewTopology(sidechainLayout())

	require.Len(t, topo.Inputs, 2)
	assert.Equal(t, 0, topo.Inputs[0].First)
	assert.Equal(t, 2, topo.Inputs[1].First)
	assert.Equal(t, "Sidechain In", topo.Inputs[1].Name)
	assert.Equal(t, 4, topo.InputChannels)
	assert.Equal(t, []string{"input_1", "input_2", "input_3", "input_4"}, topo.InputNames())
}

func TestNewTopologySkipsInactive(t *testing.T) {
	config := NewBuilder().
		WithStereoInput("Main").
		WithSidechain("Side").
		WithStereoOutput("Out").
		MustBuild()

	topo := NewTopology(config)
	assert.Len(t, topo.Inputs, 1)
	assert.Equal(t, 2, topo.InputChannels)
	assert.False(t, topo.EventInput)
}

func TestTopologyEqual(t *testing.T) {
	a := NewTopology(NewStereoConfiguration())
	b := NewTopology(NewStereoConfiguration())
	assert.True(t, a.Equal(b))

	c := NewTopology(NewBuilder().WithAudioInput("Multi In", 4).WithAudioOutput("Multi Out", 4).MustBuild())
	assert.False(t, a.Equal(c))

	latent := NewBuilder().WithStereoInput("Stereo In").WithStereoOutput("Stereo Out").WithLatency(32).WithEventInput("MIDI In").MustBuild()
	assert.False(t, a.Equal(NewTopology(latent)))
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, []string{"input_1"}, ChannelNames("input", 1))
	assert.Equal(t, []string{"output_FL", "output_FR"}, ChannelNames("output", 2))
	assert.Empty(t, ChannelNames("input", 0))
}
