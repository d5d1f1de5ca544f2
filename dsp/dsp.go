package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// FilterShape selects the response computed by Biquad.Configure.
type FilterShape int

const (
	Lowpass FilterShape = iota
	Highpass
	Bandpass
)

// Configure recomputes the coefficients in place for the given response
// while keeping the filter state, so it can be called per block without
// clicks or allocations.
func (b *Biquad) Configure(shape FilterShape, cutoff, sampleRate, q float32) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	var b0, b1, b2 float64
	switch shape {
	case Highpass:
		b0 = (1.0 + cosw0) / 2.0
		b1 = -(1.0 + cosw0)
		b2 = (1.0 + cosw0) / 2.0
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1.0 - cosw0) / 2.0
		b1 = 1.0 - cosw0
		b2 = (1.0 - cosw0) / 2.0
	}
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0
	b.b0 = float32(b0 / a0)
	b.b1 = float32(b1 / a0)
	b.b2 = float32(b2 / a0)
	b.a1 = float32(a1 / a0)
	b.a2 = float32(a2 / a0)
}

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Oldest returns the sample written size writes ago, which is the next one
// to be overwritten.
func (d *DelayLine) Oldest() float32 {
	return d.buffer[d.writePos]
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
