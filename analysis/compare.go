package analysis

import (
	"math"
)

const (
	envelopeFrame = 256
	envelopeHop   = 128
	spectrumSize  = 4096
	// Samples closer than this are treated as equal by Identical.
	identicalTolerance = 1.0 / 32768
)

// Metrics compares a candidate render with a reference render of the same
// material. Both are assumed sample aligned.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	ComparedFrames  int `json:"compared_frames"`

	MaxAbsDiff      float64 `json:"max_abs_diff"`
	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`

	// Identical is set when lengths match and no sample differs by more
	// than one 16-bit step.
	Identical bool `json:"identical"`
}

// Compare measures how far candidate is from reference.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	n := min(len(reference), len(candidate))
	m.ComparedFrames = n
	if n == 0 || sampleRate <= 0 {
		m.Identical = len(reference) == len(candidate)
		return m
	}
	ref, cand := reference[:n], candidate[:n]

	var sum float64
	for i := range ref {
		d := ref[i] - cand[i]
		sum += d * d
		m.MaxAbsDiff = math.Max(m.MaxAbsDiff, math.Abs(d))
	}
	m.TimeRMSE = math.Sqrt(sum / float64(n))
	m.Identical = len(reference) == len(candidate) && m.MaxAbsDiff <= identicalTolerance

	refEnv := rmsEnvelope(ref, envelopeFrame, envelopeHop)
	candEnv := rmsEnvelope(cand, envelopeFrame, envelopeHop)
	if len(refEnv) > 0 {
		diff := make([]float64, len(refEnv))
		for i := range refEnv {
			diff[i] = linToDB(refEnv[i]) - linToDB(candEnv[i])
		}
		m.EnvelopeRMSEDB = rms(diff)
	}

	if n >= spectrumSize {
		a, errA := MagnitudeSpectrum(ref, spectrumSize)
		b, errB := MagnitudeSpectrum(cand, spectrumSize)
		if errA == nil && errB == nil {
			diff := make([]float64, len(a)-1)
			for k := 1; k < len(a); k++ {
				diff[k-1] = linToDB(a[k]) - linToDB(b[k])
			}
			m.SpectralRMSEDB = rms(diff)
		}
	}

	hopSec := float64(envelopeHop) / float64(sampleRate)
	m.RefDecayDBPerS = decaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = decaySlopeDBPerS(candEnv, hopSec)
	return m
}

// Within reports whether every distance stays inside the given limits.
func (m Metrics) Within(maxRMSE, maxSpectralDB float64) bool {
	return m.ReferenceFrames == m.CandidateFrames &&
		m.TimeRMSE <= maxRMSE &&
		m.SpectralRMSEDB <= maxSpectralDB
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame, hop int) []float64 {
	if len(x) < frame {
		return nil
	}
	out := make([]float64, 1+(len(x)-frame)/hop)
	for i := range out {
		out[i] = rms(x[i*hop : i*hop+frame])
	}
	return out
}

// decaySlopeDBPerS fits a line to the envelope from its peak down to 60 dB
// below it. It returns 0 when there are too few frames to fit.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 {
		return 0
	}
	peakIdx := 0
	for i, v := range env {
		if v > env[peakIdx] {
			peakIdx = i
		}
	}
	floor := linToDB(env[peakIdx]) - 60
	start, end := peakIdx+1, len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < floor {
			end = i
			break
		}
	}
	if end-start < 6 {
		return 0
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
