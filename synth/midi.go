package synth

import (
	"gitlab.com/gomidi/midi/v2"
)

const (
	ccDataEntry       = 6
	ccSustain         = 64
	ccRPNLSB          = 100
	ccRPNMSB          = 101
	ccAllSoundOff     = 120
	ccAllNotesOff     = 123
	rpnNull           = 127
	rpnPitchBendRange = 0
)

type midiState struct {
	// channel is 1..16, or 0 to accept every channel.
	channel        uint8
	rpnMSB, rpnLSB uint8
}

// SetMIDIChannel restricts HandleMIDI to one channel (1..16). Zero accepts
// all channels.
func (e *Engine) SetMIDIChannel(channel int) {
	if channel < 0 || channel > 16 {
		channel = 0
	}
	e.midi.channel = uint8(channel)
}

// HandleMIDI dispatches a channel voice message to the note and controller
// handlers. Messages on other channels and unsupported messages are ignored.
func (e *Engine) HandleMIDI(msg midi.Message) {
	var ch, key, vel, ctl, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if e.acceptChannel(ch) {
			e.NoteOn(int(key), float32(vel)/127)
		}
	case msg.GetNoteEnd(&ch, &key):
		if e.acceptChannel(ch) {
			e.NoteOff(int(key))
		}
	case msg.GetPitchBend(&ch, &rel, &abs):
		if e.acceptChannel(ch) {
			e.PitchWheel(float32(rel) / 8192)
		}
	case msg.GetControlChange(&ch, &ctl, &val):
		if e.acceptChannel(ch) {
			e.controlChange(ctl, val)
		}
	}
}

func (e *Engine) acceptChannel(ch uint8) bool {
	return e.midi.channel == 0 || e.midi.channel == ch+1
}

func (e *Engine) controlChange(ctl, val uint8) {
	switch ctl {
	case ccSustain:
		e.SustainPedal(val != 0)
	case ccAllSoundOff:
		e.AllSoundOff()
	case ccAllNotesOff:
		e.AllNotesOff()
	case ccRPNMSB:
		e.midi.rpnMSB = val
	case ccRPNLSB:
		e.midi.rpnLSB = val
	case ccDataEntry:
		if e.midi.rpnMSB == 0 && e.midi.rpnLSB == rpnPitchBendRange {
			e.SetPitchBendRange(int(val))
		}
	}
}
