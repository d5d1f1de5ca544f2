package synth

import "github.com/cwbudde/algo-synth/voice"

// Process renders nframes stereo frames into left and right, writing sample
// i at index i*stride. Requests longer than BlockSize are rendered as
// consecutive blocks.
func (e *Engine) Process(left, right []float32, nframes, stride int) {
	if stride < 1 {
		stride = 1
	}
	for nframes > 0 {
		n := min(nframes, BlockSize)
		e.processBlock(left, right, n, stride)
		nframes -= n
		if nframes > 0 {
			left = left[n*stride:]
			right = right[n*stride:]
		}
	}
}

// ProcessInterleaved renders len(out)/2 frames of interleaved stereo.
func (e *Engine) ProcessInterleaved(out []float32) {
	frames := len(out) / 2
	if frames == 0 {
		return
	}
	e.Process(out, out[1:], frames, 2)
}

func (e *Engine) processBlock(left, right []float32, nframes, stride int) {
	bend := e.bendCurrent
	end := e.bendTarget
	inc := (end - bend) / float32(nframes)

	mix := e.mix[:nframes]
	clear(mix)

	for j := 0; j < nframes; {
		fr := min(nframes-j, voice.MaxProcessFrames)
		for i := range e.slots {
			s := &e.slots[i]
			if !s.active {
				continue
			}
			// Slots are reclaimed here once their voice has decayed.
			if s.voice.IsSilent() {
				s.active = false
				continue
			}
			s.voice.SetPitchBend(bend)
			s.voice.ProcessSamplesMix(mix[j:j+fr], e.masterVolume)
		}
		j += fr
		bend += inc * float32(fr)
	}

	e.effects.Process(mix, left, right, stride)
	e.bendCurrent = end
}
