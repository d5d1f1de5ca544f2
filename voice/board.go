// Package voice implements the per-note synthesis unit: two oscillators, an
// LFO, a resonant filter with its own envelope and an amplitude envelope.
package voice

import (
	"math"

	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-synth/dsp"
	"github.com/cwbudde/algo-synth/param"
)

// MaxProcessFrames is the largest block ProcessSamplesMix renders at once.
// Filter coefficients are recomputed once per block of this size.
const MaxProcessFrames = 64

const (
	middleC       = 261.63
	minCutoffHz   = 20.0
	maxCutoffFrac = 0.45
	ln16          = 2.772588722239781
)

// Board is one voice. The zero value is not usable; call New.
type Board struct {
	sampleRate int

	freq      glide
	pitchBend float32
	velocity  float32

	osc1, osc2 oscillator
	lfo        oscillator
	filter     [2]dsp.Biquad
	filterEnv  adsr
	ampEnv     adsr

	lfoFreq       float32
	lfoLast       float32
	lfoToOsc      float32
	lfoOscSelect  int
	lfoToFilter   float32
	lfoToAmp      float32
	osc2Octave    float32
	osc2Pitch     float32
	osc2Detune    float32
	osc2Ratio     float64
	osc2Sync      bool
	oscMix        float32
	ringMix       float32
	cutoff        float32
	resonance     float32
	filterEnvAmt  float32
	filterShape   dsp.FilterShape
	filterStages  int
	filterKbd     float32
	filterVelSens float32
	ampVelSens    float32

	buf [MaxProcessFrames]float32
}

// New creates a voice with every parameter at its default value.
func New(sampleRate int) *Board {
	b := &Board{
		sampleRate: sampleRate,
		pitchBend:  1,
		velocity:   1,
		osc1:       newOscillator(sampleRate, shapeSaw),
		osc2:       newOscillator(sampleRate, shapeSaw),
		lfo:        newOscillator(sampleRate, shapeSine),
		filterEnv:  newADSR(sampleRate),
		ampEnv:     newADSR(sampleRate),
	}
	defaults := param.Defaults()
	for id, v := range defaults {
		b.UpdateParameter(param.ID(id), v)
	}
	return b
}

// SetSampleRate changes the rendering rate. Glides in progress keep their
// remaining sample count.
func (b *Board) SetSampleRate(rate int) {
	b.sampleRate = rate
	b.osc1.sampleRate = float64(rate)
	b.osc2.sampleRate = float64(rate)
	b.lfo.sampleRate = float64(rate)
	b.filterEnv.sampleRate = float32(rate)
	b.ampEnv.sampleRate = float32(rate)
}

// SetFrequency glides from start to target Hz over seconds.
func (b *Board) SetFrequency(start, target float64, seconds float32) {
	b.freq.configure(start, target, int(seconds*float32(b.sampleRate)))
}

// Frequency returns the current (unbent) frequency in Hz.
func (b *Board) Frequency() float64 {
	return b.freq.value
}

// SetVelocity sets the normalized note velocity in [0,1].
func (b *Board) SetVelocity(v float32) {
	b.velocity = v
}

// SetPitchBend sets the pitch multiplier applied on top of the glide.
func (b *Board) SetPitchBend(ratio float32) {
	b.pitchBend = ratio
}

// TriggerOn starts (or restarts) both envelopes from their current level.
func (b *Board) TriggerOn() {
	b.filterEnv.triggerOn()
	b.ampEnv.triggerOn()
}

// TriggerOff moves both envelopes to their release stage.
func (b *Board) TriggerOff() {
	b.filterEnv.triggerOff()
	b.ampEnv.triggerOff()
}

// Reset clears oscillator, filter and envelope state. The frequency is kept.
func (b *Board) Reset() {
	b.osc1.reset()
	b.osc2.reset()
	b.lfo.reset()
	b.lfoLast = 0
	b.filter[0].Reset()
	b.filter[1].Reset()
	b.filterEnv.reset()
	b.ampEnv.reset()
}

// IsSilent reports whether the amplitude envelope has finished.
func (b *Board) IsSilent() bool {
	return b.ampEnv.silent()
}

// UpdateParameter applies a voice parameter. Engine-level parameters are
// ignored.
func (b *Board) UpdateParameter(id param.ID, v float32) {
	switch id {
	case param.AmpEnvAttack:
		b.ampEnv.attack = v
	case param.AmpEnvDecay:
		b.ampEnv.decay = v
	case param.AmpEnvSustain:
		b.ampEnv.sustain = v
	case param.AmpEnvRelease:
		b.ampEnv.release = v
	case param.FilterEnvAttack:
		b.filterEnv.attack = v
	case param.FilterEnvDecay:
		b.filterEnv.decay = v
	case param.FilterEnvSustain:
		b.filterEnv.sustain = v
	case param.FilterEnvRelease:
		b.filterEnv.release = v
	case param.Oscillator1Waveform:
		b.osc1.shape = shapeFor(oscWaveforms[:], v)
	case param.Oscillator2Waveform:
		b.osc2.shape = shapeFor(oscWaveforms[:], v)
	case param.Oscillator1Pulsewidth:
		b.osc1.setPulseWidth(v)
	case param.Oscillator2Pulsewidth:
		b.osc2.setPulseWidth(v)
	case param.Oscillator2Octave:
		b.osc2Octave = v
		b.updateOsc2Ratio()
	case param.Oscillator2Pitch:
		b.osc2Pitch = v
		b.updateOsc2Ratio()
	case param.Oscillator2Detune:
		b.osc2Detune = v
		b.updateOsc2Ratio()
	case param.Oscillator2Sync:
		b.osc2Sync = v >= 0.5
	case param.OscillatorMix:
		b.oscMix = v
	case param.OscillatorMixRingMod:
		b.ringMix = v
	case param.LFOFreq:
		b.lfoFreq = v
	case param.LFOWaveform:
		b.lfo.shape = shapeFor(lfoWaveforms[:], v)
	case param.LFOToOscillators:
		b.lfoToOsc = v
	case param.LFOOscillatorSelect:
		b.lfoOscSelect = int(v + 0.5)
	case param.LFOToFilterCutoff:
		b.lfoToFilter = (v + 1) / 2
	case param.LFOToAmp:
		b.lfoToAmp = (v + 1) / 2
	case param.FilterCutoff:
		b.cutoff = v
	case param.FilterResonance:
		b.resonance = v
	case param.FilterEnvAmount:
		b.filterEnvAmt = v
	case param.FilterType:
		b.filterShape = dsp.FilterShape(int(v + 0.5))
	case param.FilterSlope:
		b.filterStages = 1
		if v >= 0.5 {
			b.filterStages = 2
		}
	case param.FilterKbdTrack:
		b.filterKbd = v
	case param.FilterVelocitySens:
		b.filterVelSens = v
	case param.AmpVelocitySens:
		b.ampVelSens = v
	}
}

func (b *Board) updateOsc2Ratio() {
	semitones := 12*float64(b.osc2Octave) + float64(b.osc2Pitch) + float64(b.osc2Detune)
	b.osc2Ratio = math.Exp2(semitones / 12)
}

// ProcessSamplesMix renders len(out) samples and adds them to out scaled by
// gain.
func (b *Board) ProcessSamplesMix(out []float32, gain float32) {
	for len(out) > 0 {
		n := len(out)
		if n > MaxProcessFrames {
			n = MaxProcessFrames
		}
		b.render(b.buf[:n])
		for i, s := range b.buf[:n] {
			out[i] += s * gain
		}
		out = out[n:]
	}
}

func (b *Board) render(dst []float32) {
	// The filter follows the modulation sources once per block.
	b.configureFilter(b.freq.value*float64(b.pitchBend), b.lfoLast)

	velAmp := 1 - b.ampVelSens + b.ampVelSens*b.velocity
	modOsc1 := b.lfoOscSelect == 0 || b.lfoOscSelect == 1
	modOsc2 := b.lfoOscSelect == 0 || b.lfoOscSelect == 2
	a1 := (1 - b.oscMix) / 2
	a2 := (1 + b.oscMix) / 2

	for i := range dst {
		f := b.freq.next() * float64(b.pitchBend)
		lfo, _ := b.lfo.next(float64(b.lfoFreq))
		b.lfoLast = lfo

		f1, f2 := f, f*b.osc2Ratio
		if b.lfoToOsc > 0 {
			vib := math.Exp2(float64(lfo*b.lfoToOsc) / 12)
			if modOsc1 {
				f1 *= vib
			}
			if modOsc2 {
				f2 *= vib
			}
		}

		s1, wrapped := b.osc1.next(f1)
		if b.osc2Sync && wrapped {
			b.osc2.phase = 0
		}
		s2, _ := b.osc2.next(f2)

		x := (a1*s1+a2*s2)*(1-b.ringMix) + b.ringMix*s1*s2
		for st := 0; st < b.filterStages; st++ {
			x = b.filter[st].Process(x)
		}
		b.filterEnv.next()

		amp := b.ampEnv.next() * velAmp
		if b.lfoToAmp > 0 {
			amp *= 1 - b.lfoToAmp*(1-lfo)/2
		}
		dst[i] = x * amp
	}
}

func (b *Board) configureFilter(freq float64, lfo float32) {
	keyFreq := float32(middleC) + b.filterKbd*(float32(freq)-middleC)
	if keyFreq < minCutoffHz {
		keyFreq = minCutoffHz
	}
	velScale := 1 - b.filterVelSens + b.filterVelSens*b.velocity
	exponent := b.cutoff + b.filterEnvAmt/16*b.filterEnv.level*velScale + b.lfoToFilter*lfo

	hz := keyFreq * approx.FastExp(exponent*ln16)
	maxHz := maxCutoffFrac * float32(b.sampleRate)
	if hz > maxHz {
		hz = maxHz
	}
	if hz < minCutoffHz {
		hz = minCutoffHz
	}
	q := float32(math.Sqrt2/2) / (1 - b.resonance)
	for st := range b.filter {
		b.filter[st].Configure(b.filterShape, hz, float32(b.sampleRate), q)
	}
}
