// Package synth schedules notes onto a fixed bank of voices and renders the
// mixed result through the master effects chain.
//
// All methods must be called from a single goroutine (or be serialized by the
// caller). Nothing on the note or render path allocates or blocks.
package synth

import (
	"io"

	"github.com/cwbudde/algo-synth/effects"
	"github.com/cwbudde/algo-synth/param"
	"github.com/cwbudde/algo-synth/tuning"
	"github.com/cwbudde/algo-synth/voice"
)

// NumSlots is the number of voice slots, one per MIDI note number.
const NumSlots = 128

// BlockSize is the largest number of frames rendered in one internal pass.
// Longer Process calls are split into blocks of this size.
const BlockSize = 1024

const defaultPitchBendRange = 2

// Voice is the per-slot synthesis unit driven by the engine.
type Voice interface {
	SetSampleRate(rate int)
	// SetFrequency glides from start to target Hz over seconds.
	SetFrequency(start, target float64, seconds float32)
	// Frequency returns the currently sounding (unbent) frequency.
	Frequency() float64
	SetVelocity(v float32)
	SetPitchBend(ratio float32)
	TriggerOn()
	TriggerOff()
	Reset()
	// IsSilent reports whether the voice has fully decayed.
	IsSilent() bool
	// ProcessSamplesMix adds len(out) rendered samples, scaled by gain, to out.
	ProcessSamplesMix(out []float32, gain float32)
	UpdateParameter(id param.ID, value float32)
}

// KeyboardMode selects the note allocation policy.
type KeyboardMode int

const (
	// Poly gives every note its own slot.
	Poly KeyboardMode = iota
	// Mono plays one note at a time on slot 0 and re-attacks on every note.
	Mono
	// Legato is Mono without re-attacking overlapping notes.
	Legato
)

func (m KeyboardMode) String() string {
	switch m {
	case Poly:
		return "poly"
	case Mono:
		return "mono"
	case Legato:
		return "legato"
	}
	return "unknown"
}

// ParseKeyboardMode converts "poly", "mono" or "legato".
func ParseKeyboardMode(s string) (KeyboardMode, bool) {
	for m := Poly; m <= Legato; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Poly, false
}

type slot struct {
	active     bool
	keyPressed bool
	// keyPressOrder is the counter value of the most recent note-on;
	// zero means the key is not held.
	keyPressOrder uint64
	voice         Voice
}

// Engine owns the voice slots, the allocation state and the effects chain.
type Engine struct {
	sampleRate int
	slots      [NumSlots]slot

	keyPressCounter   uint64
	maxVoices         int
	mode              KeyboardMode
	sustain           bool
	lastNoteFrequency float64
	portamentoTime    float32
	pitchBendRange    int
	bendCurrent       float32
	bendTarget        float32
	masterVolume      float32

	tuning  *tuning.Map
	effects *effects.Chain
	midi    midiState

	mix [BlockSize]float32
}

// NewEngine creates an engine with 128 voice.Board voices.
func NewEngine(sampleRate int) *Engine {
	return NewEngineWithVoices(sampleRate, func() Voice {
		return voice.New(sampleRate)
	})
}

// NewEngineWithVoices creates an engine whose slots are filled by newVoice.
// Every parameter is initialized to its default.
func NewEngineWithVoices(sampleRate int, newVoice func() Voice) *Engine {
	e := &Engine{
		sampleRate:     sampleRate,
		pitchBendRange: defaultPitchBendRange,
		bendCurrent:    1,
		bendTarget:     1,
		masterVolume:   1,
		tuning:         tuning.New(),
		effects:        effects.NewChain(sampleRate),
		midi:           midiState{rpnMSB: rpnNull, rpnLSB: rpnNull},
	}
	for i := range e.slots {
		e.slots[i].voice = newVoice()
	}
	for id, v := range param.Defaults() {
		e.UpdateParameter(param.ID(id), v)
	}
	return e
}

// SetSampleRate propagates a new rate to every voice and the limiter.
func (e *Engine) SetSampleRate(rate int) {
	e.sampleRate = rate
	e.effects.SetSampleRate(rate)
	for i := range e.slots {
		e.slots[i].voice.SetSampleRate(rate)
	}
}

// SampleRate returns the current sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// SetMaxVoices caps the number of simultaneously active slots in Poly mode.
// Zero means unlimited. Values are clamped to [0, NumSlots]. Lowering the
// cap below the active count cuts the surplus voices right away, in
// stealing order.
func (e *Engine) SetMaxVoices(n int) {
	if n < 0 {
		n = 0
	}
	if n > NumSlots {
		n = NumSlots
	}
	e.maxVoices = n
	if n == 0 || e.mode != Poly {
		return
	}
	for e.ActiveVoices() > n {
		e.stealVoice()
	}
}

// MaxVoices returns the voice cap; zero means unlimited.
func (e *Engine) MaxVoices() int { return e.maxVoices }

// SetPitchBendRange sets the pitch wheel range in semitones.
func (e *Engine) SetPitchBendRange(semitones int) {
	if semitones < 0 {
		semitones = 0
	}
	e.pitchBendRange = semitones
}

// PitchBendRange returns the pitch wheel range in semitones.
func (e *Engine) PitchBendRange() int { return e.pitchBendRange }

// Mode returns the active keyboard mode.
func (e *Engine) Mode() KeyboardMode { return e.mode }

// ActiveVoices counts the slots currently producing sound.
func (e *Engine) ActiveVoices() int {
	n := 0
	for i := range e.slots {
		if e.slots[i].active {
			n++
		}
	}
	return n
}

// NoteToPitch returns the frequency of note under the active tuning, or a
// negative value for unmapped notes.
func (e *Engine) NoteToPitch(note int) float64 {
	return e.tuning.NoteToPitch(note)
}

// LoadScale activates a Scala .scl scale. Sounding voices keep their pitch.
func (e *Engine) LoadScale(path string) error {
	return e.tuning.LoadScale(path)
}

// LoadKeyMap activates a Scala .kbm keyboard mapping.
func (e *Engine) LoadKeyMap(path string) error {
	return e.tuning.LoadKeyMap(path)
}

// ReadScale activates Scala scale data read from r.
func (e *Engine) ReadScale(r io.Reader) error {
	return e.tuning.ReadScale(r)
}

// ReadKeyMap activates Scala keymap data read from r.
func (e *Engine) ReadKeyMap(r io.Reader) error {
	return e.tuning.ReadKeyMap(r)
}

// DefaultTuning restores 12-TET with A4 at 440 Hz.
func (e *Engine) DefaultTuning() {
	e.tuning.Default()
}
