package synth

import "math"

// NoteOn starts note with a velocity in [0,1]. Notes outside 0..127 and
// notes the tuning leaves unmapped are ignored.
func (e *Engine) NoteOn(note int, velocity float32) {
	if note < 0 || note >= NumSlots {
		return
	}
	pitch := e.tuning.NoteToPitch(note)
	if pitch < 0 {
		return
	}

	e.slots[note].keyPressed = true

	switch e.mode {
	case Poly:
		e.polyNoteOn(note, pitch, velocity)
	case Mono, Legato:
		e.monoNoteOn(note, pitch, velocity)
	}

	e.lastNoteFrequency = pitch
}

func (e *Engine) polyNoteOn(note int, pitch float64, velocity float32) {
	if e.maxVoices > 0 && e.ActiveVoices() >= e.maxVoices {
		e.stealVoice()
	}

	s := &e.slots[note]
	e.keyPressCounter++
	s.keyPressOrder = e.keyPressCounter

	if e.lastNoteFrequency > 0 {
		s.voice.SetFrequency(e.lastNoteFrequency, pitch, e.portamentoTime)
	} else {
		s.voice.SetFrequency(pitch, pitch, 0)
	}
	if s.voice.IsSilent() {
		s.voice.Reset()
	}
	s.voice.SetVelocity(velocity)
	s.voice.TriggerOn()
	s.active = true
}

func (e *Engine) monoNoteOn(note int, pitch float64, velocity float32) {
	previous := e.newestKey()

	e.keyPressCounter++
	e.slots[note].keyPressOrder = e.keyPressCounter

	s := &e.slots[0]
	s.voice.SetVelocity(velocity)
	s.voice.SetFrequency(s.voice.Frequency(), pitch, e.portamentoTime)
	if e.mode == Mono || previous < 0 {
		s.voice.TriggerOn()
	}
	s.active = true
}

// stealVoice deactivates the releasing slot with the oldest key press, or
// the oldest active slot when every active key is still held. The slot's
// voice is cut without a release.
func (e *Engine) stealVoice() {
	idx := e.oldestActive(true)
	if idx < 0 {
		idx = e.oldestActive(false)
	}
	if idx < 0 {
		panic("synth: voice cap reached with no active voice to steal")
	}
	e.slots[idx].active = false
}

// oldestActive returns the active slot with the smallest key press order,
// optionally restricted to slots whose key is released. Equal orders resolve
// to the lowest slot index.
func (e *Engine) oldestActive(releasedOnly bool) int {
	idx := -1
	order := e.keyPressCounter + 1
	for i := range e.slots {
		s := &e.slots[i]
		if !s.active || (releasedOnly && s.keyPressed) {
			continue
		}
		if s.keyPressOrder < order {
			order = s.keyPressOrder
			idx = i
		}
	}
	return idx
}

// newestKey returns the held note with the largest key press order, or -1.
func (e *Engine) newestKey() int {
	idx := -1
	var order uint64
	for i := range e.slots {
		if e.slots[i].keyPressOrder > order {
			order = e.slots[i].keyPressOrder
			idx = i
		}
	}
	return idx
}

// NoteOff releases note. Out of range notes are ignored.
func (e *Engine) NoteOff(note int) {
	if note < 0 || note >= NumSlots {
		return
	}
	e.slots[note].keyPressed = false

	switch e.mode {
	case Poly:
		if !e.sustain {
			e.slots[note].voice.TriggerOff()
		}
		e.slots[note].keyPressOrder = 0
	case Mono, Legato:
		e.monoNoteOff(note)
	}
}

func (e *Engine) monoNoteOff(note int) {
	current := e.newestKey()
	e.slots[note].keyPressOrder = 0
	next := e.newestKey()

	if next < 0 {
		e.keyPressCounter = 0
	}
	if note != current {
		return
	}

	v := e.slots[0].voice
	if next >= 0 {
		v.SetFrequency(v.Frequency(), e.tuning.NoteToPitch(next), e.portamentoTime)
		if e.mode == Mono {
			v.TriggerOn()
		}
		return
	}
	v.TriggerOff()
}

// PitchWheel sets the bend target from a wheel position in [-1,1]. The
// change is ramped over the next rendered block.
func (e *Engine) PitchWheel(value float32) {
	e.bendTarget = float32(math.Exp2(float64(value) * float64(e.pitchBendRange) / 12))
}

// SustainPedal sets the pedal state. Lifting the pedal releases every slot
// whose key is not held.
func (e *Engine) SustainPedal(down bool) {
	e.sustain = down
	if down {
		return
	}
	// Slot 0 follows its own key state in Mono and Legato as well.
	for i := range e.slots {
		if e.slots[i].keyPressed {
			continue
		}
		e.slots[i].voice.TriggerOff()
	}
}

// Sustain reports whether the sustain pedal is down.
func (e *Engine) Sustain() bool { return e.sustain }

// AllNotesOff silences every voice immediately and clears the key state.
// The reverb tail keeps ringing.
func (e *Engine) AllNotesOff() {
	e.resetAllVoices()
}

// AllSoundOff is AllNotesOff that also clears the reverb tail and the
// limiter state.
func (e *Engine) AllSoundOff() {
	e.resetAllVoices()
	e.effects.Mute()
}

// SetKeyboardMode switches the allocation policy. Changing the mode resets
// all voices; setting the current mode again does nothing.
func (e *Engine) SetKeyboardMode(mode KeyboardMode) {
	if mode < Poly || mode > Legato || mode == e.mode {
		return
	}
	e.mode = mode
	e.resetAllVoices()
}

func (e *Engine) resetAllVoices() {
	for i := range e.slots {
		s := &e.slots[i]
		s.active = false
		s.keyPressed = false
		s.keyPressOrder = 0
		s.voice.Reset()
	}
	e.keyPressCounter = 0
	e.sustain = false
}
