// Package tuning maps note numbers to frequencies using a scale and a keyboard
// mapping. The default is 12-tone equal temperament with A4 (note 69) at 440 Hz.
package tuning

import (
	"math"
)

const numNotes = 128

// Map converts note numbers to frequencies in Hz.
type Map struct {
	// scale holds the ratios of degrees 1..n; the last entry is the period.
	scale []float64

	zeroNote  int
	firstNote int
	lastNote  int
	refNote   int
	refPitch  float64
	// octaveDegrees is the scale degree reached after one keymap repetition;
	// zero means the scale size.
	octaveDegrees int
	// mapping holds the scale degree for each key in one repetition of the
	// keymap; -1 marks an unmapped key. An empty mapping maps keys linearly.
	mapping []int

	basePitch float64
	pitches   [numNotes]float64
}

// New returns a map with the default scale and keymap.
func New() *Map {
	m := &Map{}
	m.Default()
	return m
}

// Default restores 12-TET and the standard keyboard mapping.
func (m *Map) Default() {
	m.setDefaultScale()
	m.setDefaultKeyMap()
	m.update()
}

// DefaultScale restores 12-TET while keeping the current keymap.
func (m *Map) DefaultScale() {
	m.setDefaultScale()
	m.update()
}

// DefaultKeyMap restores the standard keymap while keeping the current scale.
func (m *Map) DefaultKeyMap() {
	m.setDefaultKeyMap()
	m.update()
}

func (m *Map) setDefaultScale() {
	m.scale = make([]float64, 12)
	for i := range m.scale {
		m.scale[i] = math.Pow(2, float64(i+1)/12)
	}
}

func (m *Map) setDefaultKeyMap() {
	m.zeroNote = 60
	m.firstNote = 0
	m.lastNote = numNotes - 1
	m.refNote = 69
	m.refPitch = 440
	m.octaveDegrees = 12
	m.mapping = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
}

// NoteToPitch returns the frequency of note in Hz, or a negative value when
// the note is outside 0..127 or unmapped by the keymap.
func (m *Map) NoteToPitch(note int) float64 {
	if note < 0 || note >= numNotes {
		return -1
	}
	return m.pitches[note]
}

// ScaleSize returns the number of degrees per period of the active scale.
func (m *Map) ScaleSize() int {
	return len(m.scale)
}

func (m *Map) update() {
	m.basePitch = 1
	ref := m.rawPitch(m.refNote)
	if ref > 0 {
		m.basePitch = m.refPitch / ref
	}
	for note := range m.pitches {
		p := m.rawPitch(note)
		if p > 0 {
			p *= m.basePitch
		}
		m.pitches[note] = p
	}
}

func (m *Map) rawPitch(note int) float64 {
	if note < m.firstNote || note > m.lastNote || len(m.scale) == 0 {
		return -1
	}
	degree := note - m.zeroNote
	if len(m.mapping) > 0 {
		size := len(m.mapping)
		repeats := floorDiv(note-m.zeroNote, size)
		entry := m.mapping[note-m.zeroNote-repeats*size]
		if entry < 0 {
			return -1
		}
		octave := m.octaveDegrees
		if octave == 0 {
			octave = len(m.scale)
		}
		degree = entry + repeats*octave
	}

	size := len(m.scale)
	repeats := floorDiv(degree, size)
	index := degree - repeats*size
	pitch := math.Pow(m.scale[size-1], float64(repeats))
	if index != 0 {
		pitch *= m.scale[index-1]
	}
	return pitch
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
