package effects

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-synth/dsp"
)

// Schroeder/Moorer reverb in the Freeverb arrangement: eight parallel damped
// combs into four series allpasses per channel. Delay lengths are in samples.
const (
	numCombs     = 8
	numAllpasses = 4
	stereoSpread = 23

	fixedGain     = 0.015
	scaleWet      = 3
	scaleDry      = 2
	scaleDamp     = 0.4
	scaleRoom     = 0.28
	offsetRoom    = 0.7
	allpassFactor = 0.5
)

var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

type comb struct {
	line        *dsp.DelayLine
	filterStore float32
	feedback    float32
	damp1       float32
	damp2       float32
}

func (c *comb) process(in float32) float32 {
	out := c.line.Oldest()
	c.filterStore = float32(dspcore.FlushDenormals(float64(out*c.damp2 + c.filterStore*c.damp1)))
	c.line.Write(in + c.filterStore*c.feedback)
	return out
}

func (c *comb) mute() {
	c.line.Reset()
	c.filterStore = 0
}

type allpass struct {
	line     *dsp.DelayLine
	feedback float32
}

func (a *allpass) process(in float32) float32 {
	bufOut := a.line.Oldest()
	a.line.Write(float32(dspcore.FlushDenormals(float64(in + bufOut*a.feedback))))
	return bufOut - in
}

// Reverb turns a mono signal into a stereo reverberated signal.
type Reverb struct {
	combL, combR         [numCombs]comb
	allpassL, allpassR   [numAllpasses]allpass
	roomSize, damp       float32
	wet, wet1, wet2, dry float32
	width                float32
}

// NewReverb returns a reverb with room 0.5, damp 0.5, fully dry output.
func NewReverb() *Reverb {
	r := &Reverb{}
	for i := range r.combL {
		r.combL[i].line = dsp.NewDelayLine(combTuning[i])
		r.combR[i].line = dsp.NewDelayLine(combTuning[i] + stereoSpread)
	}
	for i := range r.allpassL {
		r.allpassL[i] = allpass{line: dsp.NewDelayLine(allpassTuning[i]), feedback: allpassFactor}
		r.allpassR[i] = allpass{line: dsp.NewDelayLine(allpassTuning[i] + stereoSpread), feedback: allpassFactor}
	}
	r.SetRoomSize(0.5)
	r.SetDamp(0.5)
	r.SetWet(0)
	r.SetDry(1)
	r.SetWidth(1)
	return r
}

// SetRoomSize sets the comb feedback from a [0,1] room size.
func (r *Reverb) SetRoomSize(v float32) {
	r.roomSize = v*scaleRoom + offsetRoom
	r.update()
}

// SetDamp sets high-frequency damping in [0,1].
func (r *Reverb) SetDamp(v float32) {
	r.damp = v * scaleDamp
	r.update()
}

// SetWet sets the reverberated level in [0,1].
func (r *Reverb) SetWet(v float32) {
	r.wet = v * scaleWet
	r.update()
}

// SetDry sets the direct signal level in [0,1].
func (r *Reverb) SetDry(v float32) {
	r.dry = v * scaleDry
}

// SetWidth sets the stereo width in [0,1].
func (r *Reverb) SetWidth(v float32) {
	r.width = v
	r.update()
}

func (r *Reverb) update() {
	r.wet1 = r.wet * (r.width/2 + 0.5)
	r.wet2 = r.wet * ((1 - r.width) / 2)
	for i := range r.combL {
		r.combL[i].feedback = r.roomSize
		r.combR[i].feedback = r.roomSize
		r.combL[i].damp1 = r.damp
		r.combR[i].damp1 = r.damp
		r.combL[i].damp2 = 1 - r.damp
		r.combR[i].damp2 = 1 - r.damp
	}
}

// Mute clears every delay line so the tail stops immediately.
func (r *Reverb) Mute() {
	for i := range r.combL {
		r.combL[i].mute()
		r.combR[i].mute()
	}
	for i := range r.allpassL {
		r.allpassL[i].line.Reset()
		r.allpassR[i].line.Reset()
	}
}

// ProcessReplace reverberates len(in) mono samples and overwrites
// left[i*stride] and right[i*stride] with the stereo result.
func (r *Reverb) ProcessReplace(in []float32, left, right []float32, stride int) {
	for i, x := range in {
		input := x * 2 * fixedGain

		var outL, outR float32
		for c := range r.combL {
			outL += r.combL[c].process(input)
			outR += r.combR[c].process(input)
		}
		for a := range r.allpassL {
			outL = r.allpassL[a].process(outL)
			outR = r.allpassR[a].process(outR)
		}

		left[i*stride] = outL*r.wet1 + outR*r.wet2 + x*r.dry
		right[i*stride] = outR*r.wet1 + outL*r.wet2 + x*r.dry
	}
}
