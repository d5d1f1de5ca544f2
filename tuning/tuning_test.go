package tuning

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDefaultTuningIsEqualTemperedA440(t *testing.T) {
	m := New()
	if got := m.NoteToPitch(69); !almostEqual(got, 440, 1e-9) {
		t.Fatalf("note 69: got %f want 440", got)
	}
	if got := m.NoteToPitch(60); !almostEqual(got, 261.6255653, 1e-6) {
		t.Fatalf("note 60: got %f want 261.6256", got)
	}
	if got := m.NoteToPitch(81); !almostEqual(got, 880, 1e-9) {
		t.Fatalf("note 81: got %f want 880", got)
	}
	if got := m.NoteToPitch(0); !almostEqual(got, 8.1757989, 1e-6) {
		t.Fatalf("note 0: got %f want 8.1758", got)
	}
}

func TestNoteToPitchRejectsOutOfRange(t *testing.T) {
	m := New()
	if m.NoteToPitch(-1) >= 0 || m.NoteToPitch(128) >= 0 {
		t.Fatalf("expected negative pitch for out-of-range notes")
	}
}

func TestReadScaleJustIntonation(t *testing.T) {
	m := New()
	scl := `! just.scl
!
Just major
 7
!
9/8
5/4
4/3
3/2
5/3
15/8
2/1
`
	if err := m.ReadScale(strings.NewReader(scl)); err != nil {
		t.Fatalf("ReadScale: %v", err)
	}
	if m.ScaleSize() != 7 {
		t.Fatalf("scale size: got %d want 7", m.ScaleSize())
	}
	// Key 69 is keymap degree 9: one period plus scale degree 2 (5/4).
	if got := m.NoteToPitch(69); !almostEqual(got, 440, 1e-9) {
		t.Fatalf("reference note must keep 440 Hz, got %f", got)
	}
	if got := m.NoteToPitch(60); !almostEqual(got, 176, 1e-9) {
		t.Fatalf("note 60: got %f want 176", got)
	}
}

func TestCentsScaleWithLinearKeyMap(t *testing.T) {
	var b strings.Builder
	b.WriteString("quarter tones\n24\n")
	for i := 1; i <= 24; i++ {
		fmt.Fprintf(&b, "%.1f\n", float64(i)*50)
	}
	m := New()
	if err := m.ReadScale(strings.NewReader(b.String())); err != nil {
		t.Fatalf("ReadScale: %v", err)
	}
	kbm := "0\n0\n127\n60\n69\n440.0\n0\n"
	if err := m.ReadKeyMap(strings.NewReader(kbm)); err != nil {
		t.Fatalf("ReadKeyMap: %v", err)
	}
	ratio := m.NoteToPitch(61) / m.NoteToPitch(60)
	if !almostEqual(ratio, math.Pow(2, 1.0/24), 1e-9) {
		t.Fatalf("quarter-tone step: got %f", ratio)
	}
	if got := m.NoteToPitch(69); !almostEqual(got, 440, 1e-9) {
		t.Fatalf("reference note: got %f want 440", got)
	}
}

func TestKeyMapUnmappedKeysReturnNegativePitch(t *testing.T) {
	m := New()
	// White keys only: black keys are unmapped.
	kbm := `! white.kbm
12
0
127
60
69
440.0
12
0
x
2
x
4
5
x
7
x
9
x
11
`
	if err := m.ReadKeyMap(strings.NewReader(kbm)); err != nil {
		t.Fatalf("ReadKeyMap: %v", err)
	}
	for _, note := range []int{61, 63, 66, 68, 70} {
		if m.NoteToPitch(note) >= 0 {
			t.Fatalf("expected note %d unmapped", note)
		}
	}
	for _, note := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		if m.NoteToPitch(note) <= 0 {
			t.Fatalf("expected note %d mapped", note)
		}
	}
}

func TestKeyMapRangeLimitsNotes(t *testing.T) {
	m := New()
	kbm := "0\n36\n96\n60\n69\n440\n12\n"
	if err := m.ReadKeyMap(strings.NewReader(kbm)); err != nil {
		t.Fatalf("ReadKeyMap: %v", err)
	}
	if m.NoteToPitch(35) >= 0 || m.NoteToPitch(97) >= 0 {
		t.Fatalf("expected notes outside 36..96 unmapped")
	}
	if m.NoteToPitch(36) <= 0 {
		t.Fatalf("expected note 36 mapped")
	}
}

func TestInvalidFilesKeepPreviousTuning(t *testing.T) {
	m := New()
	before := m.NoteToPitch(64)
	if err := m.ReadScale(strings.NewReader("bad\n3\n9/8\n")); err == nil {
		t.Fatalf("expected error for truncated scale")
	}
	if err := m.ReadScale(strings.NewReader("bad\n1\n0/1\n")); err == nil {
		t.Fatalf("expected error for zero ratio")
	}
	if err := m.ReadKeyMap(strings.NewReader("12\n0\n127\n")); err == nil {
		t.Fatalf("expected error for truncated keymap")
	}
	if got := m.NoteToPitch(64); got != before {
		t.Fatalf("tuning changed after failed loads: got %f want %f", got, before)
	}
}

func TestLoadScaleFromFileAndReset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oct.scl")
	if err := os.WriteFile(path, []byte("octaves only\n1\n2/1\n"), 0o644); err != nil {
		t.Fatalf("write scl: %v", err)
	}
	m := New()
	if err := m.LoadScale(path); err != nil {
		t.Fatalf("LoadScale: %v", err)
	}
	// 1-note scale with the 12-key keymap: each key is a full octave.
	if got := m.NoteToPitch(70) / m.NoteToPitch(69); !almostEqual(got, 2, 1e-9) {
		t.Fatalf("adjacent keys: got ratio %f want 2", got)
	}
	if err := m.LoadScale(filepath.Join(dir, "missing.scl")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	m.Default()
	if got := m.NoteToPitch(81); !almostEqual(got, 880, 1e-9) {
		t.Fatalf("after Default: got %f want 880", got)
	}
}
