package voice

type envStage int

const (
	envOff envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// adsr is a linear-segment envelope. Times are in seconds.
type adsr struct {
	attack, decay, sustain, release float32
	sampleRate                      float32

	stage envStage
	level float32
	step  float32
}

func newADSR(sampleRate int) adsr {
	return adsr{sustain: 1, sampleRate: float32(sampleRate)}
}

func (e *adsr) steps(seconds float32) float32 {
	n := seconds * e.sampleRate
	if n < 1 {
		return 1
	}
	return n
}

func (e *adsr) triggerOn() {
	e.stage = envAttack
	e.step = (1 - e.level) / e.steps(e.attack)
}

func (e *adsr) triggerOff() {
	if e.stage == envOff {
		return
	}
	e.stage = envRelease
	e.step = e.level / e.steps(e.release)
}

func (e *adsr) reset() {
	e.stage = envOff
	e.level = 0
	e.step = 0
}

func (e *adsr) silent() bool {
	return e.stage == envOff
}

func (e *adsr) next() float32 {
	switch e.stage {
	case envAttack:
		e.level += e.step
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
			e.step = (1 - e.sustain) / e.steps(e.decay)
		}
	case envDecay:
		e.level -= e.step
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = envSustain
		}
	case envSustain:
		e.level = e.sustain
	case envRelease:
		e.level -= e.step
		if e.level <= 0 {
			e.level = 0
			e.stage = envOff
		}
	}
	return e.level
}

// glide moves linearly from one frequency to another over a number of samples.
type glide struct {
	value  float64
	target float64
	step   float64
	left   int
}

func (g *glide) configure(start, target float64, samples int) {
	if samples <= 0 {
		g.value, g.target, g.left, g.step = target, target, 0, 0
		return
	}
	g.value = start
	g.target = target
	g.left = samples
	g.step = (target - start) / float64(samples)
}

func (g *glide) next() float64 {
	if g.left > 0 {
		g.value += g.step
		g.left--
		if g.left == 0 {
			g.value = g.target
		}
	}
	return g.value
}
