package audioio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteAndReadStereoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	in := []float32{0, 0, 0.5, -0.5, -0.25, 0.25, 0.9, -0.9}
	if err := WriteStereoInterleavedWAV(path, in, 44100); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, channels, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if channels != 2 || rate != 44100 {
		t.Fatalf("format: channels=%d rate=%d", channels, rate)
	}
	if len(got) != len(in) {
		t.Fatalf("length: got %d want %d", len(got), len(in))
	}
	for i := range in {
		if math.Abs(float64(got[i]-in[i])) > 2.0/32768 {
			t.Fatalf("sample %d: got %f want %f", i, got[i], in[i])
		}
	}
}

func TestWriteRejectsOddSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")
	if err := WriteStereoInterleavedWAV(path, []float32{0, 0, 0}, 48000); err == nil {
		t.Fatalf("expected error for odd sample count")
	}
}

func TestReadWAVRejectsMissingFile(t *testing.T) {
	if _, _, _, err := ReadWAV(filepath.Join(t.TempDir(), "none.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestStereoRMS(t *testing.T) {
	if StereoRMS(nil) != 0 {
		t.Fatalf("empty buffer should have zero RMS")
	}
	got := StereoRMS([]float32{1, -1, 1, -1})
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("rms: got %f want 1", got)
	}
	if math.Abs(DBFSToLinear(-20)-0.1) > 1e-12 {
		t.Fatalf("dbfs conversion: got %f", DBFSToLinear(-20))
	}
}

func TestResampleStereoChangesLengthAndKeepsChannels(t *testing.T) {
	const frames = 4800
	in := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		in[i*2] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/48000))
		in[i*2+1] = 0
	}
	out, err := ResampleStereo(in, 48000, 24000)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	gotFrames := len(out) / 2
	if gotFrames < frames/2-64 || gotFrames > frames/2+64 {
		t.Fatalf("frames: got %d want about %d", gotFrames, frames/2)
	}
	var left, right float64
	for i := 0; i < gotFrames; i++ {
		left += math.Abs(float64(out[i*2]))
		right += math.Abs(float64(out[i*2+1]))
	}
	if left == 0 || right > left*1e-3 {
		t.Fatalf("channel separation lost: left=%f right=%f", left, right)
	}

	same, err := ResampleStereo(in, 48000, 48000)
	if err != nil || len(same) != len(in) {
		t.Fatalf("equal rates should pass through")
	}
}
