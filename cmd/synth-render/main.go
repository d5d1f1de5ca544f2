package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/internal/render"
	"github.com/cwbudde/algo-synth/internal/score"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

func main() {
	// Command-line flags
	midiPath := flag.String("midi", "", "Standard MIDI File to render (overrides -note)")
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (1-127)")
	hold := flag.Float64("hold", 1.0, "Seconds the single note is held before NoteOff")
	tail := flag.Float64("tail", 2.0, "Seconds rendered after the last event")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Stop the tail when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	outputRate := flag.Int("output-rate", 0, "Resample the result to this rate before writing (0 = render rate)")
	blockSize := flag.Int("block-size", 128, "Largest number of frames per engine call")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	mode := flag.String("mode", "", "Keyboard mode override: poly, mono or legato")
	maxVoices := flag.Int("max-voices", -1, "Polyphony cap override (0 = unlimited)")
	channel := flag.Int("channel", 0, "MIDI channel filter 1-16 (0 = all)")
	sclPath := flag.String("scl", "", "Scala scale file (optional)")
	kbmPath := flag.String("kbm", "", "Scala keyboard mapping file (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	e := synth.NewEngine(*sampleRate)

	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		if err := p.Apply(e); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *mode != "" {
		m, ok := synth.ParseKeyboardMode(*mode)
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid -mode %q (use poly, mono or legato)\n", *mode)
			os.Exit(1)
		}
		e.SetKeyboardMode(m)
	}
	if *maxVoices >= 0 {
		e.SetMaxVoices(*maxVoices)
	}
	if *sclPath != "" {
		if err := e.LoadScale(*sclPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scale: %v\n", err)
			os.Exit(1)
		}
	}
	if *kbmPath != "" {
		if err := e.LoadKeyMap(*kbmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading keymap: %v\n", err)
			os.Exit(1)
		}
	}
	e.SetMIDIChannel(*channel)

	var s *score.Score
	if *midiPath != "" {
		var err error
		s, err = score.Load(*midiPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading MIDI file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rendering %s (%d events, %.2fs) at %d Hz, mode %s...\n", *midiPath, len(s.Events), s.Length.Seconds(), *sampleRate, e.Mode())
	} else {
		if *note < 0 || *note > 127 || *velocity < 1 || *velocity > 127 {
			fmt.Fprintf(os.Stderr, "Invalid note %d or velocity %d\n", *note, *velocity)
			os.Exit(1)
		}
		if *channel > 0 {
			s = score.SingleNote(uint8(*channel-1), uint8(*note), uint8(*velocity), seconds(*hold))
		} else {
			s = score.SingleNote(0, uint8(*note), uint8(*velocity), seconds(*hold))
		}
		fmt.Printf("Rendering note %d (%.2f Hz), velocity %d, held %.2fs at %d Hz...\n", *note, e.NoteToPitch(*note), *velocity, *hold, *sampleRate)
	}

	autoStop := !math.IsInf(*decayDBFS, 1)
	res := render.Score(e, s, render.Options{
		BlockSize:  *blockSize,
		Tail:       seconds(*tail),
		AutoStop:   autoStop,
		StopDBFS:   *decayDBFS,
		HoldBlocks: *decayHoldBlocks,
	})
	if res.Stopped {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", res.Frames, float64(res.Frames)/float64(*sampleRate), *decayDBFS)
	}

	samples := res.Samples
	rate := *sampleRate
	if *outputRate > 0 && *outputRate != rate {
		var err error
		samples, err = audioio.ResampleStereo(samples, rate, *outputRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling to %d Hz: %v\n", *outputRate, err)
			os.Exit(1)
		}
		rate = *outputRate
	}

	if err := audioio.WriteStereoInterleavedWAV(*output, samples, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames at %d Hz, RMS %.1f dBFS)\n", *output, len(samples)/2, rate, 20*math.Log10(audioio.StereoRMS(samples)+1e-12))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
