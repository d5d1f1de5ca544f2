// Package render drives an engine offline from a score, applying every event
// at its exact frame.
package render

import (
	"time"

	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/internal/score"
	"github.com/cwbudde/algo-synth/synth"
)

const defaultBlockSize = 128

// Options controls an offline render.
type Options struct {
	// BlockSize is the largest number of frames per engine call.
	BlockSize int
	// Tail is rendered after the last event.
	Tail time.Duration
	// AutoStop ends the tail early once HoldBlocks consecutive blocks fall
	// below StopDBFS.
	AutoStop   bool
	StopDBFS   float64
	HoldBlocks int
}

// Result is the rendered interleaved stereo audio.
type Result struct {
	Samples    []float32
	Frames     int
	SampleRate int
	// Stopped is set when AutoStop cut the tail short.
	Stopped bool
}

// Score renders s through e. Events are applied before the frame they fall
// on; engine blocks are split at event boundaries.
func Score(e *synth.Engine, s *score.Score, opt Options) Result {
	if opt.BlockSize < 1 {
		opt.BlockSize = defaultBlockSize
	}
	if opt.HoldBlocks < 1 {
		opt.HoldBlocks = 1
	}
	sr := e.SampleRate()
	frameAt := func(d time.Duration) int {
		return int(d.Seconds()*float64(sr) + 0.5)
	}

	lastFrame := frameAt(s.Length)
	endFrame := lastFrame + frameAt(opt.Tail)
	if endFrame < 1 {
		endFrame = 1
	}
	threshold := audioio.DBFSToLinear(opt.StopDBFS)

	res := Result{
		Samples:    make([]float32, 0, endFrame*2),
		SampleRate: sr,
	}
	block := make([]float32, opt.BlockSize*2)
	next, pos, below := 0, 0, 0

	for pos < endFrame {
		for next < len(s.Events) && frameAt(s.Events[next].At) <= pos {
			e.HandleMIDI(s.Events[next].Message)
			next++
		}

		n := min(opt.BlockSize, endFrame-pos)
		if next < len(s.Events) {
			n = min(n, frameAt(s.Events[next].At)-pos)
		}
		buf := block[:n*2]
		e.ProcessInterleaved(buf)
		res.Samples = append(res.Samples, buf...)
		pos += n

		if !opt.AutoStop || next < len(s.Events) || pos <= lastFrame {
			continue
		}
		if audioio.StereoRMS(buf) < threshold {
			below++
			if below >= opt.HoldBlocks {
				res.Stopped = true
				break
			}
		} else {
			below = 0
		}
	}
	res.Frames = pos
	return res
}
