// Package score reads Standard MIDI Files into a flat, time-ordered list of
// channel messages the engine understands.
package score

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Event is a channel message at an absolute time from the start of the file.
type Event struct {
	At      time.Duration
	Message midi.Message
}

// Score is the merged, time-ordered event list of all tracks.
type Score struct {
	Events []Event
	// Length is the time of the last event.
	Length time.Duration
}

// Load reads a .mid file from disk.
func Load(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("midi file %s: %w", path, err)
	}
	return s, nil
}

// Read parses SMF data. Tempo changes are honored; meta, sysex and
// unsupported channel messages are dropped.
func Read(r io.Reader) (*Score, error) {
	s := &Score{}
	err := smf.ReadTracksFrom(r).Do(func(te smf.TrackEvent) {
		msg := midi.Message(te.Message)
		if !playable(msg) {
			return
		}
		s.Events = append(s.Events, Event{
			At:      time.Duration(te.AbsMicroSeconds) * time.Microsecond,
			Message: append(midi.Message(nil), msg...),
		})
	}).Error()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].At < s.Events[j].At
	})
	if n := len(s.Events); n > 0 {
		s.Length = s.Events[n-1].At
	}
	return s, nil
}

func playable(msg midi.Message) bool {
	var ch, a, b uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteOn(&ch, &a, &b),
		msg.GetNoteOff(&ch, &a, &b),
		msg.GetControlChange(&ch, &a, &b),
		msg.GetPitchBend(&ch, &rel, &abs):
		return true
	}
	return false
}

// Channels returns the distinct zero-based MIDI channels used by the score,
// in ascending order.
func (s *Score) Channels() []uint8 {
	var seen [16]bool
	for _, ev := range s.Events {
		if len(ev.Message) > 0 {
			seen[ev.Message[0]&0x0f] = true
		}
	}
	var out []uint8
	for ch, ok := range seen {
		if ok {
			out = append(out, uint8(ch))
		}
	}
	return out
}

// SingleNote builds a score that plays one note on channel for hold, then
// releases it.
func SingleNote(channel, note, velocity uint8, hold time.Duration) *Score {
	if hold < 0 {
		hold = 0
	}
	return &Score{
		Events: []Event{
			{At: 0, Message: midi.NoteOn(channel, note, velocity)},
			{At: hold, Message: midi.NoteOff(channel, note)},
		},
		Length: hold,
	}
}
