package muscle

import "math"

// Geometry relates the muscle length, measured along the tendon, to the
// length of a fiber pennated at constant height.
type Geometry struct {
	OptFiberLength float64
	Height         float64
}

func NewGeometry(optFiberLength, optPennationAngle float64) Geometry {
	return Geometry{
		OptFiberLength: optFiberLength,
		Height:         optFiberLength * math.Sin(optPennationAngle),
	}
}

func (g Geometry) FiberLength(lm float64) float64 {
	if g.Height == 0 {
		return math.Abs(lm)
	}
	return math.Hypot(g.Height, lm)
}

// CosPennation returns the cosine of the pennation angle at muscle length lm
// and its derivative with respect to lm.
func (g Geometry) CosPennation(lm float64) (ca, dca float64) {
	if g.Height == 0 {
		return 1, 0
	}
	lf := g.FiberLength(lm)
	r := g.Height / lf
	return lm / lf, r * r / lf
}

func (g Geometry) NormalizedFiberLength(lm float64) float64 {
	return g.FiberLength(lm) / g.OptFiberLength
}

func (g Geometry) PennationAngle(lm float64) float64 {
	if g.Height == 0 {
		return 0
	}
	return math.Atan2(g.Height, lm)
}

// FiberToMuscleLength is the inverse of FiberLength. Fibers shorter than the
// height cannot exist and map to zero.
func (g Geometry) FiberToMuscleLength(lf float64) float64 {
	if lf <= g.Height {
		return 0
	}
	return math.Sqrt(lf*lf - g.Height*g.Height)
}

func (g Geometry) OptMuscleLength() float64 {
	return g.FiberToMuscleLength(g.OptFiberLength)
}
