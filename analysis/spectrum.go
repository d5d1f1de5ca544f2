// Package analysis measures rendered audio: pitch, spectra and the distance
// between a reference render and a candidate.
package analysis

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// MaxFFTSize bounds the analysis window.
const MaxFFTSize = 1 << 16

// FFTSize returns the largest power of two <= n, capped at MaxFFTSize.
func FFTSize(n int) int {
	size := 1
	for size*2 <= n && size*2 <= MaxFFTSize {
		size *= 2
	}
	return size
}

// MagnitudeSpectrum returns |X[k]| for k in [0, size/2] of the Hann-windowed
// first size samples of x. size must be a power of two no larger than len(x).
func MagnitudeSpectrum(x []float64, size int) ([]float64, error) {
	if size < 2 || size > len(x) || size&(size-1) != 0 {
		return nil, fmt.Errorf("invalid fft size %d for %d samples", size, len(x))
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}
	buf := make([]float64, size)
	for i := range buf {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		buf[i] = x[i] * w
	}
	bins := make([]complex128, size/2+1)
	plan.Forward(bins, buf)

	mag := make([]float64, len(bins))
	for k, c := range bins {
		mag[k] = math.Hypot(real(c), imag(c))
	}
	return mag, nil
}

// PeakFrequency returns the frequency of the strongest spectral peak of x,
// refined by parabolic interpolation of the log magnitudes.
func PeakFrequency(x []float64, sampleRate int) (float64, error) {
	size := FFTSize(len(x))
	mag, err := MagnitudeSpectrum(x, size)
	if err != nil {
		return 0, err
	}
	best := 1
	for k := 2; k < len(mag)-1; k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	if mag[best] == 0 {
		return 0, fmt.Errorf("signal is silent")
	}

	offset := 0.0
	if best > 0 && best < len(mag)-1 {
		a := linToDB(mag[best-1])
		b := linToDB(mag[best])
		c := linToDB(mag[best+1])
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (float64(best) + offset) * float64(sampleRate) / float64(size), nil
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}
