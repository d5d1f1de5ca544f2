package effects

import "math"

// Distortion is a memoryless power-law waveshaper. Crunch 0 is clean; higher
// values flatten the transfer curve towards a square wave.
type Distortion struct {
	// exponent applied to the rectified signal, 1 - crunch.
	exponent float32
}

// NewDistortion returns a bypassed distortion stage.
func NewDistortion() *Distortion {
	return &Distortion{exponent: 1}
}

// SetCrunch sets the distortion amount in [0, 0.9].
func (d *Distortion) SetCrunch(crunch float32) {
	d.exponent = 1 - crunch
}

// Crunch returns the current distortion amount.
func (d *Distortion) Crunch() float32 {
	return 1 - d.exponent
}

// Process shapes buf in place.
func (d *Distortion) Process(buf []float32) {
	if d.exponent == 1 {
		return
	}
	e := float64(d.exponent)
	for i, x := range buf {
		if x < 0 {
			buf[i] = -float32(math.Pow(float64(-x), e))
		} else {
			buf[i] = float32(math.Pow(float64(x), e))
		}
	}
}
