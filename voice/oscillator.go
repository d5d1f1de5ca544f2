package voice

import "math"

// shape is a periodic or random waveform shared by the audio oscillators and
// the LFO.
type shape int

const (
	shapeSine shape = iota
	shapePulse
	shapeSaw
	shapeTriangle
	shapeSawDown
	shapeNoise
	shapeRandom
)

// oscWaveforms maps the osc1/osc2 waveform parameter to a shape.
var oscWaveforms = [...]shape{shapeSine, shapePulse, shapeSaw, shapeNoise, shapeRandom}

// lfoWaveforms maps the LFO waveform parameter to a shape.
var lfoWaveforms = [...]shape{shapeSine, shapePulse, shapeTriangle, shapeNoise, shapeRandom, shapeSaw, shapeSawDown}

func shapeFor(table []shape, value float32) shape {
	i := int(value + 0.5)
	if i < 0 {
		i = 0
	}
	if i >= len(table) {
		i = len(table) - 1
	}
	return table[i]
}

const noiseSeed = 0x12345678

type oscillator struct {
	shape      shape
	sampleRate float64
	phase      float64
	// duty is the high fraction of a pulse cycle in (0,1).
	duty float64
	rng  uint32
	held float32
}

func newOscillator(sampleRate int, s shape) oscillator {
	o := oscillator{shape: s, sampleRate: float64(sampleRate), duty: 0.5}
	o.reset()
	return o
}

func (o *oscillator) reset() {
	o.phase = 0
	o.rng = noiseSeed
	o.held = o.noise()
}

// setPulseWidth maps a [0,1] width amount to a duty cycle; 0 is square.
func (o *oscillator) setPulseWidth(amount float32) {
	o.duty = 0.5 * (1 - 0.9*float64(amount))
}

func (o *oscillator) noise() float32 {
	// xorshift32: deterministic and allocation free.
	x := o.rng
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	o.rng = x
	return float32(x)/float32(math.MaxUint32)*2 - 1
}

// next returns the next sample at freq Hz and whether the phase wrapped.
func (o *oscillator) next(freq float64) (float32, bool) {
	dt := freq / o.sampleRate
	if dt < 0 {
		dt = 0
	}
	if dt > 0.5 {
		dt = 0.5
	}
	p := o.phase

	var out float32
	switch o.shape {
	case shapeSine:
		out = float32(math.Sin(2 * math.Pi * p))
	case shapePulse:
		v := -1.0
		if p < o.duty {
			v = 1.0
		}
		v += polyBLEP(p, dt)
		q := p - o.duty
		if q < 0 {
			q++
		}
		v -= polyBLEP(q, dt)
		out = float32(v)
	case shapeSaw:
		out = float32(2*p - 1 - polyBLEP(p, dt))
	case shapeSawDown:
		out = float32(1 - 2*p)
	case shapeTriangle:
		out = float32(1 - 4*math.Abs(p-0.5))
	case shapeNoise:
		out = o.noise()
	case shapeRandom:
		out = o.held
	}

	p += dt
	wrapped := false
	if p >= 1 {
		p -= 1
		wrapped = true
		if o.shape == shapeRandom {
			o.held = o.noise()
		}
	}
	o.phase = p
	return out, wrapped
}

// polyBLEP returns the band-limited step correction for a discontinuity at
// phase 0 given the phase increment dt.
func polyBLEP(p, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case p < dt:
		t := p / dt
		return t + t - t*t - 1
	case p > 1-dt:
		t := (p - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
