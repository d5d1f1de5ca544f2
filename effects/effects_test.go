package effects

import (
	"math"
	"testing"
)

func impulse(n int) []float32 {
	buf := make([]float32, n)
	buf[0] = 1
	return buf
}

func energy(buf []float32) float64 {
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	return sum
}

func TestDistortionZeroCrunchIsIdentity(t *testing.T) {
	d := NewDistortion()
	d.SetCrunch(0)
	in := []float32{-0.5, -0.1, 0, 0.25, 0.9}
	buf := append([]float32(nil), in...)
	d.Process(buf)
	for i := range in {
		if buf[i] != in[i] {
			t.Fatalf("sample %d changed: got %f want %f", i, buf[i], in[i])
		}
	}
}

func TestDistortionCrunchRaisesQuietSamplesAndKeepsSign(t *testing.T) {
	d := NewDistortion()
	d.SetCrunch(0.5)
	buf := []float32{-0.25, 0.25, 1}
	d.Process(buf)
	if math.Abs(float64(buf[0]+0.5)) > 1e-6 || math.Abs(float64(buf[1]-0.5)) > 1e-6 {
		t.Fatalf("expected sqrt shaping: got %v", buf)
	}
	if buf[2] != 1 {
		t.Fatalf("unity input should stay unity, got %f", buf[2])
	}
	if math.Abs(float64(d.Crunch()-0.5)) > 1e-6 {
		t.Fatalf("crunch getter: got %f", d.Crunch())
	}
}

func TestReverbDryOnlyPassesScaledInput(t *testing.T) {
	r := NewReverb()
	r.SetWet(0)
	r.SetDry(0.5)
	in := []float32{0.1, -0.2, 0.3}
	left := make([]float32, 3)
	right := make([]float32, 3)
	r.ProcessReplace(in, left, right, 1)
	for i := range in {
		if left[i] != in[i] || right[i] != in[i] {
			t.Fatalf("frame %d: got L=%f R=%f want %f", i, left[i], right[i], in[i])
		}
	}
}

func TestReverbProducesTailAndMuteClearsIt(t *testing.T) {
	r := NewReverb()
	r.SetWet(1)
	r.SetDry(0)
	r.SetRoomSize(0.8)

	const n = 4096
	left := make([]float32, n)
	right := make([]float32, n)
	r.ProcessReplace(impulse(n), left, right, 1)
	if energy(left) == 0 || energy(right) == 0 {
		t.Fatalf("expected reverb tail on both channels")
	}

	r.Mute()
	silence := make([]float32, n)
	r.ProcessReplace(silence, left, right, 1)
	if energy(left) != 0 || energy(right) != 0 {
		t.Fatalf("expected silence after Mute, got L=%g R=%g", energy(left), energy(right))
	}
}

func TestReverbWidthZeroIsMono(t *testing.T) {
	r := NewReverb()
	r.SetWet(1)
	r.SetDry(0)
	r.SetWidth(0)
	const n = 3000
	left := make([]float32, n)
	right := make([]float32, n)
	r.ProcessReplace(impulse(n), left, right, 1)
	for i := range left {
		if math.Abs(float64(left[i]-right[i])) > 1e-7 {
			t.Fatalf("frame %d differs with zero width: L=%g R=%g", i, left[i], right[i])
		}
	}
}

func TestReverbHonorsStride(t *testing.T) {
	r := NewReverb()
	in := []float32{0.1, 0.2, 0.3, 0.4}
	out := make([]float32, len(in)*2)
	for i := range out {
		out[i] = 99
	}
	r.ProcessReplace(in, out, out[1:], 2)
	for i, x := range in {
		want := x * scaleDry
		if out[i*2] != want || out[i*2+1] != want {
			t.Fatalf("frame %d: got %f/%f want %f", i, out[i*2], out[i*2+1], want)
		}
	}
}

func TestLimiterKeepsOutputBelowUnity(t *testing.T) {
	l := NewLimiter(48000)
	const n = 4800
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		s := float32(4 * math.Sin(2*math.Pi*220*float64(i)/48000))
		left[i] = s
		right[i] = -s
	}
	l.Process(left, right, n, 1)
	for i := range left {
		if absf(left[i]) >= 1 || absf(right[i]) >= 1 {
			t.Fatalf("frame %d exceeds unity: L=%f R=%f", i, left[i], right[i])
		}
	}
}

func TestLimiterPassesQuietSignal(t *testing.T) {
	l := NewLimiter(44100)
	left := []float32{0.1, -0.2, 0.3}
	right := []float32{0.05, 0.05, -0.4}
	wantL := append([]float32(nil), left...)
	wantR := append([]float32(nil), right...)
	l.Process(left, right, 3, 1)
	for i := range left {
		if left[i] != wantL[i] || right[i] != wantR[i] {
			t.Fatalf("frame %d modified: got %f/%f", i, left[i], right[i])
		}
	}
}

func TestLimiterLinksChannels(t *testing.T) {
	l := NewLimiter(48000)
	const n = 2400
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i] = 3
		right[i] = 0.3
	}
	l.Process(left, right, n, 1)
	// Once the envelope has settled both channels share one gain.
	gl := left[n-1] / 3
	gr := right[n-1] / 0.3
	if gr >= 0.5 || math.Abs(float64(gl-gr)) > 0.01 {
		t.Fatalf("expected a shared gain reduction: left gain=%f right gain=%f", gl, gr)
	}
}

func TestChainMuteResetsLimiter(t *testing.T) {
	c := NewChain(48000)
	c.Reverb.SetWet(0)
	c.Reverb.SetDry(0.5)
	loud := make([]float32, 2400)
	for i := range loud {
		loud[i] = 4
	}
	left := make([]float32, len(loud))
	right := make([]float32, len(loud))
	c.Process(loud, left, right, 1)

	quiet := []float32{0.2}
	l, r := make([]float32, 1), make([]float32, 1)
	c.Process(append([]float32(nil), quiet...), l, r, 1)
	if l[0] >= 0.2 {
		t.Fatalf("limiter should still be reducing gain, got %f", l[0])
	}

	c.Mute()
	c.Process(append([]float32(nil), quiet...), l, r, 1)
	if math.Abs(float64(l[0]-0.2)) > 1e-6 {
		t.Fatalf("after mute the quiet sample should pass unchanged, got %f", l[0])
	}
}

func TestChainRunsStagesInOrder(t *testing.T) {
	c := NewChain(48000)
	c.Distortion.SetCrunch(0.5)
	c.Reverb.SetWet(0)
	c.Reverb.SetDry(0.5)

	mono := []float32{0.25, -0.25}
	left := make([]float32, 2)
	right := make([]float32, 2)
	c.Process(mono, left, right, 1)
	// sqrt(0.25) = 0.5, dry gain 1, below the limiter threshold.
	if math.Abs(float64(left[0]-0.5)) > 1e-6 || math.Abs(float64(right[1]+0.5)) > 1e-6 {
		t.Fatalf("unexpected chain output L=%v R=%v", left, right)
	}
	if mono[0] != 0.5 {
		t.Fatalf("distortion should process the mono buffer in place, got %f", mono[0])
	}
}
