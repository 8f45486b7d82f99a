package process

// ProcessChannels processes all available channels with the given function
func (ctx *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	in, out := ctx.Input.Channels, ctx.Output.Channels
	for ch := 0; ch < ctx.GetNumChannels(); ch++ {
		fn(ch, in[ch], out[ch])
	}
}

// ProcessStereo processes up to 2 channels (stereo) with the given function
func (ctx *Context) ProcessStereo(fn func(ch int, input, output []float32)) {
	in, out := ctx.Input.Channels, ctx.Output.Channels
	for ch := 0; ch < ctx.GetNumStereoChannels(); ch++ {
		fn(ch, in[ch], out[ch])
	}
}

// ProcessMono processes only the first channel
func (ctx *Context) ProcessMono(fn func(input, output []float32)) {
	if ctx.NumInputChannels() > 0 && ctx.NumOutputChannels() > 0 {
		fn(ctx.Input.Channels[0], ctx.Output.Channels[0])
	}
}

// ProcessOutputs runs fn over every output channel. Generators use it; the
// input may have no channels at all.
func (ctx *Context) ProcessOutputs(fn func(ch int, output []float32)) {
	for ch, out := range ctx.Output.Channels {
		fn(ch, out)
	}
}

// GetNumChannels returns the minimum of input and output channels
func (ctx *Context) GetNumChannels() int {
	return min(ctx.NumInputChannels(), ctx.NumOutputChannels())
}

// GetNumStereoChannels returns the number of channels capped at 2
func (ctx *Context) GetNumStereoChannels() int {
	return min(ctx.GetNumChannels(), 2)
}
