package audioio

import (
	"math"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// StereoRMS returns the RMS over every sample of an interleaved buffer.
func StereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}

// DBFSToLinear converts a dBFS level to a linear amplitude.
func DBFSToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Resample converts a mono signal from fromRate to toRate.
func Resample(in []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ResampleStereo converts interleaved stereo from fromRate to toRate, one
// channel at a time.
func ResampleStereo(interleaved []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return interleaved, nil
	}
	frames := len(interleaved) / 2
	var channels [2][]float64
	for c := range channels {
		in := make([]float64, frames)
		for i := range in {
			in[i] = float64(interleaved[i*2+c])
		}
		out, err := Resample(in, fromRate, toRate)
		if err != nil {
			return nil, err
		}
		channels[c] = out
	}

	n := min(len(channels[0]), len(channels[1]))
	out := make([]float32, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = float32(channels[0][i])
		out[i*2+1] = float32(channels[1][i])
	}
	return out, nil
}
