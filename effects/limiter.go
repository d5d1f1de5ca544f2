package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	dspeffects "github.com/cwbudde/algo-dsp/dsp/effects"
)

const (
	limiterThreshold  = 0.9
	limiterAttackSec  = 0.0005
	limiterReleaseSec = 0.1
	limiterCeiling    = 0.999
)

// Limiter is a stereo-linked peak limiter with a soft knee above the
// threshold. Its output magnitude always stays below 1.
//
// One envelope follows the louder channel; the gain for that envelope comes
// from the static curve of an algo-dsp limiter and is applied to both
// channels.
type Limiter struct {
	threshold    float32
	attackCoeff  float32
	releaseCoeff float32
	env          float32
	curve        *dspeffects.Limiter
}

// NewLimiter creates a limiter for the given sample rate.
func NewLimiter(sampleRate int) *Limiter {
	curve, err := dspeffects.NewLimiter(float64(max(sampleRate, 1)))
	if err != nil {
		panic(fmt.Sprintf("effects: limiter: %v", err))
	}
	if err := curve.SetThreshold(20 * math.Log10(limiterThreshold)); err != nil {
		panic(fmt.Sprintf("effects: limiter threshold: %v", err))
	}
	l := &Limiter{threshold: limiterThreshold, curve: curve}
	l.SetSampleRate(sampleRate)
	return l
}

// SetSampleRate recomputes the envelope time constants.
func (l *Limiter) SetSampleRate(sampleRate int) {
	if sampleRate < 1 {
		sampleRate = 1
	}
	fs := float32(sampleRate)
	l.attackCoeff = approx.FastExp(-1 / (limiterAttackSec * fs))
	l.releaseCoeff = approx.FastExp(-1 / (limiterReleaseSec * fs))
}

// Reset clears the envelope follower.
func (l *Limiter) Reset() {
	l.env = 0
	l.curve.Reset()
}

// Process limits frames stereo samples in place, reading and writing
// left[i*stride] and right[i*stride].
func (l *Limiter) Process(left, right []float32, frames, stride int) {
	thr := l.threshold
	for i := 0; i < frames; i++ {
		j := i * stride
		xl, xr := left[j], right[j]
		peak := maxf(absf(xl), absf(xr))

		coeff := l.releaseCoeff
		if peak > l.env {
			coeff = l.attackCoeff
		}
		l.env = float32(dspcore.FlushDenormals(float64(coeff*l.env + (1-coeff)*peak)))

		gain := float32(1)
		if l.env > thr {
			env := float64(l.env)
			gain = float32(l.curve.CalculateOutputLevel(env) / env)
		}
		left[j] = softClip(xl*gain, thr)
		right[j] = softClip(xr*gain, thr)
	}
}

// softClip passes |x| <= thr unchanged and maps the rest smoothly into (thr, 1).
func softClip(x, thr float32) float32 {
	a := absf(x)
	if a <= thr {
		return x
	}
	knee := 1 - thr
	d := (a - thr) / knee
	y := thr + knee*d/(1+d)
	if y > limiterCeiling {
		y = limiterCeiling
	}
	if x < 0 {
		return -y
	}
	return y
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
