package bus

// Common layouts for the plugin kinds a host usually meets.

// NewEffectStereo creates a stereo effect layout: one stereo input, one
// stereo output and no event input.
func NewEffectStereo() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// NewGenerator creates a generator/instrument configuration
// No audio input, stereo output, MIDI input
func NewGenerator() *Configuration {
	return NewBuilder().
		WithStereoOutput("Stereo Out").
		WithEventInput("MIDI In").
		MustBuild()
}
