package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/internal/render"
	"github.com/cwbudde/algo-synth/internal/score"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the candidate with the engine")
	presetPath := flag.String("preset", "", "Preset JSON path for the rendered candidate")
	midiPath := flag.String("midi", "", "MIDI file for the rendered candidate (overrides -note)")
	note := flag.Int("note", 69, "MIDI note for the rendered candidate")
	velocity := flag.Int("velocity", 100, "MIDI velocity for the rendered candidate")
	hold := flag.Float64("hold", 1.0, "Note hold time in seconds for the rendered candidate")
	tail := flag.Float64("tail", 2.0, "Tail length in seconds for the rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	maxRMSE := flag.Float64("max-rmse", -1, "Exit with status 1 when time RMSE exceeds this (negative disables)")
	maxSpectralDB := flag.Float64("max-spectral-db", 1000, "Spectral RMSE limit used with -max-rmse")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("missing -reference")
	}
	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readMono(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		stereo, err := renderCandidate(*presetPath, *midiPath, *note, *velocity, *hold, *tail, *sampleRate)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = toMono(stereo, 2)
		if *writeCandidate != "" {
			if err := audioio.WriteStereoInterleavedWAV(*writeCandidate, stereo, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	refPitch, refErr := analysis.PeakFrequency(ref, *sampleRate)
	candPitch, candErr := analysis.PeakFrequency(cand, *sampleRate)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
	} else {
		fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
		fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
		fmt.Printf("Compared frames:  %d\n", metrics.ComparedFrames)
		fmt.Println()
		fmt.Printf("Max abs diff:     %.6f\n", metrics.MaxAbsDiff)
		fmt.Printf("Time RMSE:        %.6f\n", metrics.TimeRMSE)
		fmt.Printf("Envelope RMSE:    %.2f dB\n", metrics.EnvelopeRMSEDB)
		fmt.Printf("Spectral RMSE:    %.2f dB\n", metrics.SpectralRMSEDB)
		fmt.Printf("Decay slopes:     ref=%.1f dB/s  cand=%.1f dB/s\n", metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)
		if refErr == nil && candErr == nil {
			fmt.Printf("Peak frequency:   ref=%.2f Hz  cand=%.2f Hz\n", refPitch, candPitch)
		}
		fmt.Printf("Identical:        %v\n", metrics.Identical)
	}

	if *maxRMSE >= 0 && !metrics.Within(*maxRMSE, *maxSpectralDB) {
		fmt.Fprintf(os.Stderr, "candidate differs from reference beyond tolerance\n")
		os.Exit(1)
	}
}

func readMono(path string, sampleRate int) ([]float64, error) {
	samples, channels, rate, err := audioio.ReadWAV(path)
	if err != nil {
		return nil, err
	}
	return audioio.Resample(toMono(samples, channels), rate, sampleRate)
}

func toMono(interleaved []float32, channels int) []float64 {
	n := len(interleaved) / channels
	out := make([]float64, n)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

func renderCandidate(presetPath, midiPath string, note, velocity int, hold, tail float64, sampleRate int) ([]float32, error) {
	e := synth.NewEngine(sampleRate)
	if presetPath != "" {
		p, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, err
		}
		if err := p.Apply(e); err != nil {
			return nil, err
		}
	}

	var s *score.Score
	if midiPath != "" {
		var err error
		if s, err = score.Load(midiPath); err != nil {
			return nil, err
		}
	} else {
		if note < 0 || note > 127 || velocity < 1 || velocity > 127 {
			return nil, fmt.Errorf("invalid note %d or velocity %d", note, velocity)
		}
		s = score.SingleNote(0, uint8(note), uint8(velocity), time.Duration(hold*float64(time.Second)))
	}

	res := render.Score(e, s, render.Options{Tail: time.Duration(tail * float64(time.Second))})
	return res.Samples, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
