package voice

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/param"
)

func renderBoard(b *Board, frames int) []float32 {
	out := make([]float32, frames)
	b.ProcessSamplesMix(out, 1)
	return out
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func peakFrequency(t *testing.T, samples []float32, sampleRate int) float64 {
	t.Helper()
	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	f, err := analysis.PeakFrequency(x, sampleRate)
	if err != nil {
		t.Fatalf("peak frequency: %v", err)
	}
	return f
}

func sineBoard(sampleRate int) *Board {
	b := New(sampleRate)
	b.UpdateParameter(param.Oscillator1Waveform, 0)
	b.UpdateParameter(param.Oscillator2Waveform, 0)
	return b
}

func TestNewBoardIsSilentUntilTriggered(t *testing.T) {
	b := New(48000)
	if !b.IsSilent() {
		t.Fatalf("expected fresh voice to be silent")
	}
	b.SetFrequency(440, 440, 0)
	b.TriggerOn()
	if b.IsSilent() {
		t.Fatalf("expected triggered voice to be audible")
	}
	if rms(renderBoard(b, 1024)) < 1e-3 {
		t.Fatalf("expected audible output after trigger")
	}
}

func TestReleaseEventuallyReportsSilence(t *testing.T) {
	b := New(48000)
	b.UpdateParameter(param.AmpEnvRelease, 0.01)
	b.SetFrequency(220, 220, 0)
	b.TriggerOn()
	renderBoard(b, 512)
	b.TriggerOff()
	if b.IsSilent() {
		t.Fatalf("voice should still be releasing")
	}
	// 10ms release at 48kHz is 480 samples.
	renderBoard(b, 600)
	if !b.IsSilent() {
		t.Fatalf("expected silence after release time")
	}
	if rms(renderBoard(b, 256)) != 0 {
		t.Fatalf("silent voice must render zeros")
	}
}

func TestRenderedPitchMatchesFrequency(t *testing.T) {
	const sr = 48000
	b := sineBoard(sr)
	b.SetFrequency(440, 440, 0)
	b.TriggerOn()
	out := renderBoard(b, 8192)
	got := peakFrequency(t, out, sr)
	if math.Abs(got-440) > 1 {
		t.Fatalf("peak frequency: got %.1f want 440", got)
	}
}

func TestPitchBendScalesRenderedPitch(t *testing.T) {
	const sr = 48000
	b := sineBoard(sr)
	b.SetFrequency(440, 440, 0)
	b.SetPitchBend(2)
	b.TriggerOn()
	out := renderBoard(b, 8192)
	got := peakFrequency(t, out, sr)
	if math.Abs(got-880) > 2 {
		t.Fatalf("bent peak frequency: got %.1f want 880", got)
	}
	if b.Frequency() != 440 {
		t.Fatalf("pitch bend must not change the glide frequency, got %f", b.Frequency())
	}
}

func TestGlideReachesTargetAfterTime(t *testing.T) {
	b := New(1000)
	b.SetFrequency(100, 200, 0.1)
	b.TriggerOn()
	if b.Frequency() != 100 {
		t.Fatalf("glide start: got %f want 100", b.Frequency())
	}
	renderBoard(b, 50)
	if f := b.Frequency(); math.Abs(f-150) > 1e-6 {
		t.Fatalf("glide midpoint: got %f want 150", f)
	}
	renderBoard(b, 60)
	if b.Frequency() != 200 {
		t.Fatalf("glide end: got %f want 200", b.Frequency())
	}
}

func TestZeroGlideJumpsImmediately(t *testing.T) {
	b := New(48000)
	b.SetFrequency(100, 300, 0)
	if b.Frequency() != 300 {
		t.Fatalf("expected immediate jump, got %f", b.Frequency())
	}
}

func TestResetKeepsFrequencyAndSilences(t *testing.T) {
	b := New(48000)
	b.SetFrequency(330, 330, 0)
	b.TriggerOn()
	renderBoard(b, 128)
	b.Reset()
	if !b.IsSilent() {
		t.Fatalf("expected silence after reset")
	}
	if b.Frequency() != 330 {
		t.Fatalf("reset must keep frequency, got %f", b.Frequency())
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	render := func() []float32 {
		b := New(44100)
		b.UpdateParameter(param.Oscillator2Waveform, 3)
		b.UpdateParameter(param.LFOFreq, 5)
		b.UpdateParameter(param.LFOToOscillators, 1)
		b.SetFrequency(200, 400, 0.05)
		b.TriggerOn()
		return renderBoard(b, 4096)
	}
	a, c := render(), render()
	for i := range a {
		if a[i] != c[i] {
			t.Fatalf("sample %d differs between identical renders", i)
		}
	}
}

func TestLowCutoffDarkensTone(t *testing.T) {
	const sr = 48000
	bright := New(sr)
	dark := New(sr)
	dark.UpdateParameter(param.FilterCutoff, -0.5)
	for _, b := range []*Board{bright, dark} {
		b.SetFrequency(110, 110, 0)
		b.TriggerOn()
	}
	rb := rms(renderBoard(bright, 4096))
	rd := rms(renderBoard(dark, 4096))
	if rd >= rb {
		t.Fatalf("expected low cutoff to reduce level of a saw: bright=%f dark=%f", rb, rd)
	}
}

func TestVelocitySensitivityScalesLevel(t *testing.T) {
	loud := New(48000)
	soft := New(48000)
	soft.SetVelocity(0.25)
	for _, b := range []*Board{loud, soft} {
		b.SetFrequency(220, 220, 0)
		b.TriggerOn()
	}
	rl := rms(renderBoard(loud, 2048))
	rs := rms(renderBoard(soft, 2048))
	if math.Abs(rs/rl-0.25) > 0.01 {
		t.Fatalf("expected level ratio 0.25, got %f", rs/rl)
	}
}
