// Package effects holds the master effects applied to the mixed voice signal:
// distortion on the mono mix, a mono-to-stereo reverb and a stereo limiter.
package effects

// Chain runs Distortion -> Reverb -> Limiter.
type Chain struct {
	Distortion *Distortion
	Reverb     *Reverb
	Limiter    *Limiter
}

// NewChain builds the chain for a sample rate.
func NewChain(sampleRate int) *Chain {
	return &Chain{
		Distortion: NewDistortion(),
		Reverb:     NewReverb(),
		Limiter:    NewLimiter(sampleRate),
	}
}

// SetSampleRate propagates a rate change to the rate-dependent stages.
func (c *Chain) SetSampleRate(sampleRate int) {
	c.Limiter.SetSampleRate(sampleRate)
}

// Mute clears the reverb tail and the limiter envelope.
func (c *Chain) Mute() {
	c.Reverb.Mute()
	c.Limiter.Reset()
}

// Process distorts mono in place, then writes the stereo result for
// len(mono) frames to left/right at the given stride.
func (c *Chain) Process(mono []float32, left, right []float32, stride int) {
	c.Distortion.Process(mono)
	c.Reverb.ProcessReplace(mono, left, right, stride)
	c.Limiter.Process(left, right, len(mono), stride)
}
